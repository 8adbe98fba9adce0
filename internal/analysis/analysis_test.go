package analysis_test

import (
	"testing"

	"tutorchat/backend/internal/analysis"
	"tutorchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_CleanMessage(t *testing.T) {
	res := analysis.Classify("Hello, are you free Tuesday?", "student-1", "conv-1")

	assert.True(t, res.Allowed)
	assert.Empty(t, res.Flags)
}

func TestClassify_Rules(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		flagType string
		severity models.Severity
	}{
		{"Threat", "I'll kill you if you're late again", analysis.FlagThreat, models.SeverityCritical},
		{"Sexual content", "send me nudes", analysis.FlagSexualContent, models.SeverityCritical},
		{"Hate speech", "go back to your country", analysis.FlagHateSpeech, models.SeverityCritical},
		{"Phone number", "Call me at 555-123-4567", analysis.FlagContactInfo, models.SeverityHigh},
		{"Local phone number", "ring 555 1234 tonight", analysis.FlagContactInfo, models.SeverityHigh},
		{"Email", "my email is jane.doe@example.com", analysis.FlagContactInfo, models.SeverityHigh},
		{"Obfuscated email", "jane.doe at gmail dot com", analysis.FlagContactInfo, models.SeverityHigh},
		{"Spelled number", "five five five one two three four", analysis.FlagContactInfo, models.SeverityHigh},
		{"Payment app", "Can you pay me directly on venmo?", analysis.FlagPaymentCircumvention, models.SeverityHigh},
		{"Fee avoidance", "let's skip the platform fee", analysis.FlagPaymentCircumvention, models.SeverityHigh},
		{"External link", "Check out my notes at https://notes.example.org", analysis.FlagExternalLink, models.SeverityMedium},
		{"Social app", "add me on whatsapp", analysis.FlagSocialMedia, models.SeverityMedium},
		{"Strong profanity", "this is fucking hard", analysis.FlagProfanity, models.SeverityMedium},
		{"Stretched profanity", "fuuuuck this homework", analysis.FlagProfanity, models.SeverityMedium},
		{"Leetspeak profanity", "you b1tch", analysis.FlagProfanity, models.SeverityMedium},
		{"Mild profanity", "damn, I forgot my homework", analysis.FlagProfanity, models.SeverityLow},
		{"Shouting", "HELLO ARE YOU THERE PLEASE ANSWER", analysis.FlagSpam, models.SeverityLow},
		{"Repeated characters", "sooooooo bored", analysis.FlagSpam, models.SeverityLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := analysis.Classify(tt.text, "student-1", "conv-1")

			require.NotEmpty(t, res.Flags, "expected a %s flag", tt.flagType)
			var found *analysis.Flag
			for i := range res.Flags {
				if res.Flags[i].Type == tt.flagType {
					found = &res.Flags[i]
				}
			}
			require.NotNil(t, found, "flags were %v", res.Types())
			assert.Equal(t, tt.severity, found.Severity)
			assert.NotEmpty(t, found.Reason)
			assert.Equal(t, tt.severity != models.SeverityCritical, res.Allowed)
		})
	}
}

func TestClassify_DatesAreNotPhoneNumbers(t *testing.T) {
	texts := []string{
		"See you on 2026-10-21 at 15:30",
		"See you on 2026-10-21 15:30",
		"Moved: see you on 2026-10-23 15:30",
		"Lesson moved to 10/21/2026 4pm",
		"Tuesday 10/21/2025 4pm works",
		"Can we do 21.10.2026 10.30 instead?",
		"2026/10/21 9 am or 2026/10/22 14:00",
		"I got 100 2024 points",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			res := analysis.Classify(text, "tutor-1", "conv-1")

			assert.True(t, res.Allowed)
			assert.NotContains(t, res.Types(), analysis.FlagContactInfo)
		})
	}
}

func TestClassify_PhoneNumbersNextToDates(t *testing.T) {
	texts := []string{
		"On 2026-10-21 call 555-123-4567",
		"my number is 555 1234",
		"555-1234 after 4pm",
		"Reach me at 5551234567 after 10:30",
	}

	for _, text := range texts {
		t.Run(text, func(t *testing.T) {
			res := analysis.Classify(text, "tutor-1", "conv-1")

			assert.Contains(t, res.Types(), analysis.FlagContactInfo)
		})
	}
}

func TestClassify_EmailIsNotAlsoALink(t *testing.T) {
	res := analysis.Classify("my email is jane.doe@example.com", "student-1", "conv-1")

	assert.Equal(t, []string{analysis.FlagContactInfo}, res.Types())
}

func TestClassify_OrdersBySeverity(t *testing.T) {
	res := analysis.Classify("add me on whatsapp or I'll kill you, text 555-123-4567", "student-1", "conv-1")

	assert.False(t, res.Allowed)
	assert.Equal(t, []string{analysis.FlagThreat, analysis.FlagContactInfo, analysis.FlagSocialMedia}, res.Types())

	top, ok := res.MostSevere()
	require.True(t, ok)
	assert.Equal(t, models.SeverityCritical, top.Severity)
	for i := 1; i < len(res.Flags); i++ {
		assert.GreaterOrEqual(t, res.Flags[i-1].Severity.Rank(), res.Flags[i].Severity.Rank())
	}
}

// TestClassify_BlockingRule checks that only a critical flag makes a message disallowed.
func TestClassify_BlockingRule(t *testing.T) {
	texts := []string{
		"Hello, are you free Tuesday?",
		"Call me at 555-123-4567",
		"add me on whatsapp",
		"damn",
		"I'll kill you",
		"send me nudes on snapchat",
	}
	for _, text := range texts {
		res := analysis.Classify(text, "s", "c")
		assert.Equal(t, !res.HasSeverity(models.SeverityCritical), res.Allowed, text)
	}
}

func TestClassify_IsDeterministic(t *testing.T) {
	text := "pay me directly on paypal, my number is 555 123 4567!!!!!!"

	first := analysis.Classify(text, "student-1", "conv-1")
	second := analysis.Classify(text, "student-1", "conv-1")
	third := analysis.Classify(text, "someone-else", "conv-2")

	assert.Equal(t, first, second)
	assert.Equal(t, first, third, "sender and conversation must not change the outcome")
}

func TestResult_Helpers(t *testing.T) {
	empty := analysis.Result{Allowed: true}
	_, ok := empty.MostSevere()
	assert.False(t, ok)
	assert.Empty(t, empty.Types())
	assert.False(t, empty.HasSeverity(models.SeverityLow))
}
