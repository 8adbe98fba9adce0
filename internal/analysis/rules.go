package analysis

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"tutorchat/backend/internal/models"
)

const (
	// minPhoneDigits is the digit count of a separated run treated as a phone number.
	// Dates and clock times are masked before counting.
	minPhoneDigits = 9
	// minSpelledDigits is the length of a spelled-out digit sequence ("five five five ...").
	minSpelledDigits = 7
	minSpelledWords  = 3

	shoutMinLetters  = 12
	shoutUpperRatio  = 0.7
	maxRepeatedRunes = 6
	maxRepeatedWords = 4
)

type rule struct {
	flagType string
	reason   string
	check    func(*sample) (models.Severity, bool)
}

func fixed(sev models.Severity, match func(*sample) bool) func(*sample) (models.Severity, bool) {
	return func(s *sample) (models.Severity, bool) {
		if match(s) {
			return sev, true
		}
		return "", false
	}
}

func normalizedMatches(patterns ...*regexp.Regexp) func(*sample) bool {
	return func(s *sample) bool {
		for _, p := range patterns {
			if p.MatchString(s.normalized) {
				return true
			}
		}
		return false
	}
}

var defaultRules = []rule{
	{
		flagType: FlagThreat,
		reason:   "Threats of violence are not allowed.",
		check: fixed(models.SeverityCritical, normalizedMatches(
			regexp.MustCompile(`\b(i ll|i will|im gonna|i m gonna|gonna|im going to|i m going to|going to)( [a-z]+)? (kill|hurt|stab|shoot|strangle|beat up) (you|u|ya)\b`),
			regexp.MustCompile(`\bkill (yourself|urself|yourselves)\b`),
			regexp.MustCompile(`\bkys\b`),
			regexp.MustCompile(`\bi know where (you|u) live\b`),
		)),
	},
	{
		flagType: FlagSexualContent,
		reason:   "Sexual content is not allowed.",
		check: fixed(models.SeverityCritical, normalizedMatches(
			regexp.MustCompile(`\b(send|share|show)( me)? (your |ur )?(nudes?|naked (pics?|photos?|pictures?))\b`),
			regexp.MustCompile(`\b(nudes|sexting|sext me)\b`),
			regexp.MustCompile(`\b(sexy|dirty) (pics?|photos?|pictures?|selfies?)\b`),
		)),
	},
	{
		flagType: FlagHateSpeech,
		reason:   "Hateful language is not allowed.",
		check: fixed(models.SeverityCritical, normalizedMatches(
			regexp.MustCompile(`\bgo back to (your|ur) (own )?country\b`),
			regexp.MustCompile(`\b(your|ur) kind (is|are) not welcome\b`),
			regexp.MustCompile(`\bsubhumans?\b`),
		)),
	},
	{
		flagType: FlagContactInfo,
		reason:   "Sharing personal contact details is not allowed. Please keep communication on the platform.",
		check: fixed(models.SeverityHigh, func(s *sample) bool {
			return emailPattern.MatchString(s.lower) ||
				obfuscatedEmailPattern.MatchString(s.lower) ||
				hasPhoneDigits(s) ||
				hasSpelledNumber(s.rawTokens)
		}),
	},
	{
		flagType: FlagPaymentCircumvention,
		reason:   "Payments must be made through the platform.",
		check: fixed(models.SeverityHigh, func(s *sample) bool {
			return s.hasWord(paymentApps) || paymentPhrasePattern.MatchString(s.normalized)
		}),
	},
	{
		flagType: FlagExternalLink,
		reason:   "Links to external websites are held for review.",
		check: fixed(models.SeverityMedium, func(s *sample) bool {
			withoutEmails := emailPattern.ReplaceAllString(s.lower, " ")
			return linkPattern.MatchString(withoutEmails)
		}),
	},
	{
		flagType: FlagSocialMedia,
		reason:   "Moving the conversation to other apps is not allowed.",
		check: fixed(models.SeverityMedium, func(s *sample) bool {
			if s.hasWord(socialApps) {
				return true
			}
			withoutEmails := emailPattern.ReplaceAllString(s.lower, " ")
			return handlePattern.MatchString(withoutEmails)
		}),
	},
	{
		flagType: FlagProfanity,
		reason:   "Please keep the conversation respectful.",
		check: func(s *sample) (models.Severity, bool) {
			if s.hasWord(strongProfanity) {
				return models.SeverityMedium, true
			}
			if s.hasWord(mildProfanity) {
				return models.SeverityLow, true
			}
			return "", false
		},
	},
	{
		flagType: FlagSpam,
		reason:   "This message looks like spam.",
		check: fixed(models.SeverityLow, func(s *sample) bool {
			return isShouting(s.raw) || hasRepeatedRunes(s.raw) || hasRepeatedWords(s.words)
		}),
	},
}

var (
	emailPattern           = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	obfuscatedEmailPattern = regexp.MustCompile(`\b[a-z0-9._\-]+\s*[\(\[]?\s*at\s*[\)\]]?\s*(gmail|yahoo|hotmail|outlook|icloud|protonmail|proton)\s*[\(\[]?\s*(dot|\.)\s*[\)\]]?\s*(com|net|org|me)\b`)
	localPhonePattern      = regexp.MustCompile(`\b\d{3}([\-. ])\d{4}\b`)
	datePattern            = regexp.MustCompile(`\b(\d{4}[\-/.]\d{1,2}[\-/.]\d{1,2}|\d{1,2}[\-/.]\d{1,2}[\-/.](\d{4}|\d{2}))\b`)
	clockPattern           = regexp.MustCompile(`\b([01]?\d|2[0-3])[:.][0-5]\d\b|\b(1[0-2]|0?[1-9]) ?(am|pm)\b`)
	linkPattern            = regexp.MustCompile(`https?://\S+|\bwww\.\S+|\b[a-z0-9\-]+\.(com|net|org|io|me|ly|co|info|biz|xyz)\b`)
	handlePattern          = regexp.MustCompile(`(^|\s)@[a-z0-9_.]{3,}`)
	paymentPhrasePattern   = regexp.MustCompile(`\b(pay|paying|payment|send)( me| you)? (directly|in cash|outside|off (the )?(platform|site|app))\b|\b(avoid|skip|save on) (the )?(platform |site |app )?(fees?|commission)\b|\b(cash app|western union|bank transfer|wire transfer)\b`)
)

var paymentApps = wordSet("venmo", "paypal", "cashapp", "zelle", "revolut", "bitcoin", "btc", "usdt", "westernunion", "moneygram")

var socialApps = wordSet("whatsapp", "whatsap", "telegram", "snapchat", "instagram", "insta", "facebook", "discord", "skype", "wechat", "tiktok", "kik", "viber")

var strongProfanity = wordSet("fuck", "fucking", "fucker", "motherfucker", "fck", "cunt", "bitch", "asshole", "bastard", "dickhead")

var mildProfanity = wordSet("damn", "crap", "shit", "hell", "piss", "bloody", "wtf")

// phoneContext words make a space-separated "555 1234" read as a number to call.
var phoneContext = wordSet("call", "text", "ring", "phone", "number", "num", "cell", "mobile", "sms", "tel", "reach", "dial")

var spelledDigits = map[string]bool{
	"zero": true, "one": true, "two": true, "three": true, "four": true,
	"five": true, "six": true, "seven": true, "eight": true, "nine": true,
}

// hasPhoneDigits looks for phone numbers once dates and clock times are masked out,
// so "2026-10-21 15:30" or "10/21/2026 4pm" is not read as one digit run.
func hasPhoneDigits(s *sample) bool {
	text := maskDatesAndTimes(s.lower)
	if hasPhoneNumber(text) {
		return true
	}
	for _, m := range localPhonePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != " " || s.hasWord(phoneContext) {
			return true
		}
	}
	return false
}

func maskDatesAndTimes(lower string) string {
	masked := datePattern.ReplaceAllStringFunc(lower, func(m string) string {
		if plausibleDate(m) {
			return " # "
		}
		return m
	})
	return clockPattern.ReplaceAllString(masked, " # ")
}

// plausibleDate accepts year-first dates and day/month-first dates whose parts
// fit a calendar, so "12.34.5678" is still counted as digits.
func plausibleDate(m string) bool {
	parts := strings.FieldsFunc(m, func(r rune) bool { return r == '-' || r == '/' || r == '.' })
	if len(parts) != 3 {
		return false
	}
	n := make([]int, 3)
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return false
		}
		n[i] = v
	}
	if len(parts[0]) == 4 {
		return n[1] >= 1 && n[1] <= 12 && n[2] >= 1 && n[2] <= 31
	}
	if n[0] < 1 || n[0] > 31 || n[1] < 1 || n[1] > 31 {
		return false
	}
	return n[0] <= 12 || n[1] <= 12
}

// hasPhoneNumber finds a run of at least minPhoneDigits digits where digits are
// separated by at most two characters of typical phone punctuation.
func hasPhoneNumber(raw string) bool {
	digits, gap := 0, 0
	for _, r := range raw {
		switch {
		case unicode.IsDigit(r):
			digits++
			gap = 0
			if digits >= minPhoneDigits {
				return true
			}
		case strings.ContainsRune(" -.()+/", r):
			gap++
			if gap > 2 {
				digits, gap = 0, 0
			}
		default:
			digits, gap = 0, 0
		}
	}
	return false
}

// hasSpelledNumber finds consecutive tokens spelling out a number, e.g.
// "five five five 12 three four".
func hasSpelledNumber(tokens []string) bool {
	digits, spelled := 0, 0
	for _, tok := range tokens {
		switch {
		case spelledDigits[tok]:
			digits++
			spelled++
		case isAllDigits(tok):
			digits += len(tok)
		default:
			digits, spelled = 0, 0
			continue
		}
		if digits >= minSpelledDigits && spelled >= minSpelledWords {
			return true
		}
	}
	return false
}

func isAllDigits(tok string) bool {
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func isShouting(raw string) bool {
	letters, upper := 0, 0
	for _, r := range raw {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	return letters >= shoutMinLetters && float64(upper)/float64(letters) >= shoutUpperRatio
}

func hasRepeatedRunes(raw string) bool {
	var prev rune
	run := 0
	for _, r := range raw {
		if r == prev && !unicode.IsSpace(r) {
			run++
			if run >= maxRepeatedRunes {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}

func hasRepeatedWords(words []string) bool {
	run := 0
	for i, w := range words {
		if i > 0 && w == words[i-1] {
			run++
			if run >= maxRepeatedWords {
				return true
			}
			continue
		}
		run = 1
	}
	return false
}
