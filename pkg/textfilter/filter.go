package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// blockedWords are rejected outright in player-chosen names.
var blockedWords = []string{
	"fuck", "shit", "damn", "hell", "ass", "bitch", "bastard", "crap",
	"piss", "cock", "dick", "pussy", "tits", "whore", "slut",
	"fag", "retard", "nigger", "nigga", "spic", "chink", "kike",
	"motherfucker", "goddamn", "asshole", "dumbass", "jackass",
	"bullshit", "dipshit", "shithead", "dickhead", "prick", "douche",
}

// ProfanityFilter detects blocked words on word boundaries.
type ProfanityFilter struct {
	regexes []*regexp.Regexp
}

// NewProfanityFilter creates a new profanity filter
func NewProfanityFilter() *ProfanityFilter {
	pf := &ProfanityFilter{
		regexes: make([]*regexp.Regexp, 0, len(blockedWords)),
	}
	for _, word := range blockedWords {
		pf.regexes = append(pf.regexes, regexp.MustCompile(`(?i)\b`+regexp.QuoteMeta(word)+`\b`))
	}
	return pf
}

// ContainsProfanity checks if the text contains any blocked word
func (pf *ProfanityFilter) ContainsProfanity(text string) bool {
	for _, re := range pf.regexes {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var defaultFilter = NewProfanityFilter()

// CleanName normalises a player-entered name: control characters are
// dropped, whitespace is collapsed, the result is cut to maxLen runes and
// each word is capitalised. Empty or profane names become fallback.
func CleanName(name, fallback string, maxLen int) string {
	printable := strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, name)
	cleaned := strings.Join(strings.Fields(printable), " ")

	if maxLen > 0 {
		if runes := []rune(cleaned); len(runes) > maxLen {
			cleaned = strings.TrimSpace(string(runes[:maxLen]))
		}
	}

	if cleaned == "" || defaultFilter.ContainsProfanity(cleaned) {
		return fallback
	}
	return cases.Title(language.English, cases.NoLower).String(cleaned)
}
