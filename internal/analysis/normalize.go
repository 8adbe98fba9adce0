package analysis

import (
	"strings"
	"unicode"
)

var leetReplacer = strings.NewReplacer(
	"0", "o",
	"1", "i",
	"3", "e",
	"4", "a",
	"5", "s",
	"7", "t",
	"@", "a",
	"$", "s",
)

// sample holds the views of a message that rules match against.
type sample struct {
	raw   string
	lower string
	// normalized is lower-cased, leet-decoded, with every non-letter replaced by a space
	// and whitespace collapsed.
	normalized string
	// words are the normalized tokens with runs of repeated letters squashed.
	words []string
	// rawTokens are lower-cased alphanumeric tokens without leet decoding.
	rawTokens []string
}

func newSample(text string) *sample {
	lower := strings.ToLower(text)

	decoded := leetReplacer.Replace(lower)
	normalized := strings.Join(strings.FieldsFunc(decoded, func(r rune) bool {
		return !unicode.IsLetter(r)
	}), " ")

	fields := strings.Fields(normalized)
	words := make([]string, 0, len(fields))
	for _, w := range fields {
		words = append(words, squashRepeats(w))
	}

	rawTokens := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	return &sample{
		raw:        text,
		lower:      lower,
		normalized: normalized,
		words:      words,
		rawTokens:  rawTokens,
	}
}

// squashRepeats collapses runs of three or more identical runes to one ("fuuuck" -> "fuck").
// Runs of two are kept so that ordinary words ("free", "good") survive.
func squashRepeats(w string) string {
	runes := []rune(w)
	var b strings.Builder
	for i := 0; i < len(runes); {
		j := i
		for j < len(runes) && runes[j] == runes[i] {
			j++
		}
		if j-i >= 3 {
			b.WriteRune(runes[i])
		} else {
			b.WriteString(string(runes[i:j]))
		}
		i = j
	}
	return b.String()
}

func (s *sample) hasWord(set map[string]bool) bool {
	for _, w := range s.words {
		if set[w] {
			return true
		}
	}
	return false
}

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}
