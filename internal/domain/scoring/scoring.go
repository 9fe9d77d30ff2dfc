// Package scoring computes how well two golfer profiles fit as playing partners.
//
// Compute is pure: it performs no I/O, keeps no state and never mutates its
// inputs, so callers may score candidates concurrently and in any order.
package scoring

import (
	"math"
	"sort"

	"github.com/okian/fairway/internal/domain/model"
)

// Factor identifies one component of the compatibility score.
type Factor string

// Factors in canonical order.
const (
	FactorSkill     Factor = "skill"
	FactorHandicap  Factor = "handicap"
	FactorInterests Factor = "interests"
	FactorGoals     Factor = "goals"
	FactorTraits    Factor = "traits"
	FactorPace      Factor = "pace"
	FactorRoundTime Factor = "round_time"
	FactorFrequency Factor = "frequency"
	FactorSwing     Factor = "swing"
	FactorGroup     Factor = "group"
)

// Scoring constants.
const (
	maxScoreValue     = 100
	skillSpan         = 3  // expert - beginner
	frequencySpan     = 3  // multiple_per_week - monthly
	handicapGapCap    = 20 // strokes beyond which handicaps are fully apart
	paceMismatch      = 0.4
	swingOneStraight  = 0.7
	swingMismatch     = 0.4
	groupMismatch     = 0.6
	roundOneStepAway  = 0.7
	roundTwoStepsAway = 0.4
	roundFarApart     = 0.2
)

var factorOrder = []Factor{
	FactorSkill,
	FactorHandicap,
	FactorInterests,
	FactorGoals,
	FactorTraits,
	FactorPace,
	FactorRoundTime,
	FactorFrequency,
	FactorSwing,
	FactorGroup,
}

var factorWeights = map[Factor]float64{
	FactorSkill:     0.18,
	FactorHandicap:  0.12,
	FactorInterests: 0.12,
	FactorGoals:     0.18,
	FactorTraits:    0.15,
	FactorPace:      0.10,
	FactorRoundTime: 0.05,
	FactorFrequency: 0.05,
	FactorSwing:     0.03,
	FactorGroup:     0.02,
}

// Factors returns every factor in canonical order.
func Factors() []Factor {
	out := make([]Factor, len(factorOrder))
	copy(out, factorOrder)
	return out
}

// Weight returns the weight of f, or 0 for an unknown factor.
func Weight(f Factor) float64 {
	return factorWeights[f]
}

// Compatibility is the result of comparing two profiles.
// Breakdown holds a 0-100 value only for factors both profiles supplied.
type Compatibility struct {
	Score     int            `json:"score"`
	Breakdown map[Factor]int `json:"breakdown"`
}

// FactorScore is one labelled breakdown entry.
type FactorScore struct {
	Factor Factor `json:"factor"`
	Label  string `json:"label"`
	Value  int    `json:"value"`
}

// Top returns up to n breakdown entries, highest value first. Ties keep
// canonical factor order. n <= 0 returns every entry.
func (c Compatibility) Top(n int) []FactorScore {
	out := make([]FactorScore, 0, len(c.Breakdown))
	for _, f := range factorOrder {
		if v, ok := c.Breakdown[f]; ok {
			out = append(out, FactorScore{Factor: f, Label: FactorLabel(f), Value: v})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// accumulator carries the running weighted sum across factor evaluations.
type accumulator struct {
	weighted  float64
	total     float64
	breakdown map[Factor]int
}

// apply clamps v to [0,1] and folds it in with the factor's weight.
// NaN values are dropped as if the factor were missing.
func (a *accumulator) apply(f Factor, v float64) {
	if math.IsNaN(v) {
		return
	}
	v = math.Max(0, math.Min(1, v))
	w := factorWeights[f]
	a.weighted += v * w
	a.total += w
	a.breakdown[f] = int(math.Round(v * maxScoreValue))
}

func (a *accumulator) result() Compatibility {
	if a.total <= 0 {
		return Compatibility{Score: 0, Breakdown: map[Factor]int{}}
	}
	score := int(math.Round(a.weighted / a.total * maxScoreValue))
	if score < 0 {
		score = 0
	}
	if score > maxScoreValue {
		score = maxScoreValue
	}
	return Compatibility{Score: score, Breakdown: a.breakdown}
}

// Compute scores other against self. A nil profile on either side yields a
// zero score with an empty breakdown.
func Compute(self, other *model.Profile) Compatibility {
	acc := &accumulator{breakdown: make(map[Factor]int, len(factorOrder))}
	if self == nil || other == nil {
		return acc.result()
	}

	if a, ok := self.SkillLevel.Rank(); ok {
		if b, ok := other.SkillLevel.Rank(); ok {
			acc.apply(FactorSkill, 1-float64(absInt(a-b))/skillSpan)
		}
	}

	if self.AverageHandicap != nil && other.AverageHandicap != nil {
		diff := math.Abs(*self.AverageHandicap - *other.AverageHandicap)
		acc.apply(FactorHandicap, 1-math.Min(diff, handicapGapCap)/handicapGapCap)
	}

	if v, ok := overlap(self.Interests, other.Interests); ok {
		acc.apply(FactorInterests, v)
	}
	if v, ok := overlap(self.MatchGoals, other.MatchGoals); ok {
		acc.apply(FactorGoals, v)
	}
	if v, ok := overlap(self.PersonalityTraits, other.PersonalityTraits); ok {
		acc.apply(FactorTraits, v)
	}

	if self.PaceOfPlay != "" && other.PaceOfPlay != "" {
		v := paceMismatch
		if self.PaceOfPlay == other.PaceOfPlay {
			v = 1
		}
		acc.apply(FactorPace, v)
	}

	if a, ok := self.PreferredRoundTime.Rank(); ok {
		if b, ok := other.PreferredRoundTime.Rank(); ok {
			acc.apply(FactorRoundTime, roundTimeFit(absInt(a-b)))
		}
	}

	if a, ok := self.PlayFrequency.Rank(); ok {
		if b, ok := other.PlayFrequency.Rank(); ok {
			acc.apply(FactorFrequency, 1-float64(absInt(a-b))/frequencySpan)
		}
	}

	if self.SwingTendency != "" && other.SwingTendency != "" {
		v := swingMismatch
		switch {
		case self.SwingTendency == other.SwingTendency:
			v = 1
		case self.SwingTendency == model.SwingStraight || other.SwingTendency == model.SwingStraight:
			v = swingOneStraight
		}
		acc.apply(FactorSwing, v)
	}

	if self.GroupPreference != "" && other.GroupPreference != "" {
		v := groupMismatch
		if self.GroupPreference == model.GroupFlexible ||
			other.GroupPreference == model.GroupFlexible ||
			self.GroupPreference == other.GroupPreference {
			v = 1
		}
		acc.apply(FactorGroup, v)
	}

	return acc.result()
}

func roundTimeFit(diff int) float64 {
	switch diff {
	case 0:
		return 1
	case 1:
		return roundOneStepAway
	case 2:
		return roundTwoStepsAway
	default:
		return roundFarApart
	}
}

// overlap returns the Jaccard index of two tag lists treated as sets.
// ok is false when either list is empty.
func overlap(a, b []string) (float64, bool) {
	if len(a) == 0 || len(b) == 0 {
		return 0, false
	}
	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	union := len(setA)
	shared := 0
	seenB := make(map[string]struct{}, len(b))
	for _, v := range b {
		if _, dup := seenB[v]; dup {
			continue
		}
		seenB[v] = struct{}{}
		if _, ok := setA[v]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union), true
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
