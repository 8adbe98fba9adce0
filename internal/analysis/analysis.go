// Package analysis classifies message text against the platform's content policy.
// Classification is a pure function of its input: it has no knowledge of the
// conversation or of the sender's history.
package analysis

import (
	"sort"

	"tutorchat/backend/internal/models"
)

// Flag types.
const (
	FlagThreat               = "threat"
	FlagSexualContent        = "sexual_content"
	FlagHateSpeech           = "hate_speech"
	FlagContactInfo          = "contact_info"
	FlagPaymentCircumvention = "payment_circumvention"
	FlagExternalLink         = "external_link"
	FlagSocialMedia          = "social_media"
	FlagProfanity            = "profanity"
	FlagSpam                 = "spam"
)

// Flag is a single policy finding for one message.
type Flag struct {
	Type     string          `json:"type"`
	Severity models.Severity `json:"severity"`
	Reason   string          `json:"reason"`
}

// Result of a classification. Allowed is false iff at least one flag is critical.
// Flags are ordered from the most to the least severe.
type Result struct {
	Allowed bool   `json:"allowed"`
	Flags   []Flag `json:"flags"`
}

// MostSevere returns the first flag, which is the most severe one.
func (r Result) MostSevere() (Flag, bool) {
	if len(r.Flags) == 0 {
		return Flag{}, false
	}
	return r.Flags[0], true
}

// HasSeverity reports whether any flag has the given severity.
func (r Result) HasSeverity(s models.Severity) bool {
	for _, f := range r.Flags {
		if f.Severity == s {
			return true
		}
	}
	return false
}

// Types returns the flag types in order.
func (r Result) Types() []string {
	types := make([]string, 0, len(r.Flags))
	for _, f := range r.Flags {
		types = append(types, f.Type)
	}
	return types
}

// Classifier applies an ordered rule set to message text.
type Classifier struct {
	rules []rule
}

// NewClassifier returns a classifier with the default rule set.
func NewClassifier() *Classifier {
	return &Classifier{rules: defaultRules}
}

var defaultClassifier = NewClassifier()

// Classify runs the default classifier.
func Classify(text, senderID, conversationID string) Result {
	return defaultClassifier.Classify(text, senderID, conversationID)
}

// Classify inspects text and returns every finding. The sender and conversation
// identifiers are accepted for context but do not influence the outcome.
func (c *Classifier) Classify(text, senderID, conversationID string) Result {
	s := newSample(text)

	var flags []Flag
	for _, r := range c.rules {
		if sev, ok := r.check(s); ok {
			flags = append(flags, Flag{Type: r.flagType, Severity: sev, Reason: r.reason})
		}
	}

	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Severity.Rank() > flags[j].Severity.Rank()
	})

	res := Result{Allowed: true, Flags: flags}
	if res.HasSeverity(models.SeverityCritical) {
		res.Allowed = false
	}
	return res
}
