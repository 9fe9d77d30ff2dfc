package scoring

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var factorLabels = map[Factor]string{
	FactorSkill:     "Skill level",
	FactorHandicap:  "Handicap fit",
	FactorInterests: "Shared interests",
	FactorGoals:     "Match goals",
	FactorTraits:    "Personality fit",
	FactorPace:      "Pace preference",
	FactorRoundTime: "Tee time fit",
	FactorFrequency: "Play frequency",
	FactorSwing:     "Swing tendency",
	FactorGroup:     "Group preference",
}

// FactorLabel returns the display name of a factor.
func FactorLabel(f Factor) string {
	if l, ok := factorLabels[f]; ok {
		return l
	}
	return FormatLabel(string(f))
}

// FormatLabel turns a snake_case value into capitalized words,
// e.g. "multiple_per_week" -> "Multiple Per Week".
func FormatLabel(value string) string {
	if value == "" {
		return ""
	}
	words := strings.Split(strings.ReplaceAll(value, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}
