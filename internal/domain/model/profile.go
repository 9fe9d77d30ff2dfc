// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// SkillLevel is a golfer's self-reported skill band.
type SkillLevel string

// Skill levels in ascending order.
const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
	SkillExpert       SkillLevel = "expert"
)

// Pace is the preferred pace of play.
type Pace string

// Pace values.
const (
	PaceFast    Pace = "fast"
	PaceSteady  Pace = "steady"
	PaceRelaxed Pace = "relaxed"
)

// RoundTime is the preferred time of day for a round.
type RoundTime string

// Round times in chronological order.
const (
	RoundDawn      RoundTime = "dawn"
	RoundMorning   RoundTime = "morning"
	RoundMidday    RoundTime = "midday"
	RoundAfternoon RoundTime = "afternoon"
	RoundEvening   RoundTime = "evening"
)

// Frequency is how often a golfer plays.
type Frequency string

// Frequencies in ascending order.
const (
	FrequencyMonthly         Frequency = "monthly"
	FrequencyTwicePerMonth   Frequency = "twice_per_month"
	FrequencyWeekly          Frequency = "weekly"
	FrequencyMultiplePerWeek Frequency = "multiple_per_week"
)

// Swing is the golfer's usual miss direction.
type Swing string

// Swing tendencies.
const (
	SwingLeft     Swing = "left"
	SwingStraight Swing = "straight"
	SwingRight    Swing = "right"
)

// GroupSize is the preferred group size.
type GroupSize string

// Group preferences.
const (
	GroupTwosome   GroupSize = "twosome"
	GroupThreesome GroupSize = "threesome"
	GroupFoursome  GroupSize = "foursome"
	GroupFlexible  GroupSize = "flexible"
)

var (
	skillRank = map[SkillLevel]int{
		SkillBeginner:     0,
		SkillIntermediate: 1,
		SkillAdvanced:     2,
		SkillExpert:       3,
	}
	roundTimeRank = map[RoundTime]int{
		RoundDawn:      0,
		RoundMorning:   1,
		RoundMidday:    2,
		RoundAfternoon: 3,
		RoundEvening:   4,
	}
	frequencyRank = map[Frequency]int{
		FrequencyMonthly:         0,
		FrequencyTwicePerMonth:   1,
		FrequencyWeekly:          2,
		FrequencyMultiplePerWeek: 3,
	}
)

// Rank returns the ordinal position of the level. ok is false when the
// level is empty or not one of the known values.
func (s SkillLevel) Rank() (rank int, ok bool) {
	rank, ok = skillRank[s]
	return rank, ok
}

// Rank returns the chronological position of the round time.
func (r RoundTime) Rank() (rank int, ok bool) {
	rank, ok = roundTimeRank[r]
	return rank, ok
}

// Rank returns the ordinal position of the frequency.
func (f Frequency) Rank() (rank int, ok bool) {
	rank, ok = frequencyRank[f]
	return rank, ok
}

// Validation limits.
const (
	MinHandicap    = -10
	MaxHandicap    = 54
	MaxTags        = 20
	MaxDisplayName = 80
	MaxBio         = 500
)

// Profile holds the attributes a golfer publishes for partner matching.
// Every scoring attribute is optional; the zero value (empty string, nil
// pointer, empty slice) means the golfer did not supply it.
type Profile struct {
	ID          string `json:"id" yaml:"id" validate:"required,max=64"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name" validate:"max=80"`
	Bio         string `json:"bio,omitempty" yaml:"bio" validate:"max=500"`
	AvatarURL   string `json:"avatar_url,omitempty" yaml:"avatar_url" validate:"omitempty,url"`

	SkillLevel         SkillLevel `json:"skill_level,omitempty" yaml:"skill_level" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	AverageHandicap    *float64   `json:"average_handicap,omitempty" yaml:"average_handicap" validate:"omitempty,gte=-10,lte=54"`
	Interests          []string   `json:"interests,omitempty" yaml:"interests" validate:"max=20,dive,required,max=64"`
	MatchGoals         []string   `json:"match_goals,omitempty" yaml:"match_goals" validate:"max=20,dive,required,max=64"`
	PersonalityTraits  []string   `json:"personality_traits,omitempty" yaml:"personality_traits" validate:"max=20,dive,required,max=64"`
	PaceOfPlay         Pace       `json:"pace_of_play,omitempty" yaml:"pace_of_play" validate:"omitempty,oneof=fast steady relaxed"`
	PreferredRoundTime RoundTime  `json:"preferred_round_time,omitempty" yaml:"preferred_round_time" validate:"omitempty,oneof=dawn morning midday afternoon evening"`
	PlayFrequency      Frequency  `json:"play_frequency,omitempty" yaml:"play_frequency" validate:"omitempty,oneof=monthly twice_per_month weekly multiple_per_week"`
	SwingTendency      Swing      `json:"swing_tendency,omitempty" yaml:"swing_tendency" validate:"omitempty,oneof=left straight right"`
	GroupPreference    GroupSize  `json:"group_preference,omitempty" yaml:"group_preference" validate:"omitempty,oneof=twosome threesome foursome flexible"`

	TrustScore float64   `json:"trust_score" yaml:"trust_score" validate:"gte=0"`
	UpdatedAt  time.Time `json:"updated_at,omitempty" yaml:"-"`
}

var validate = validator.New()

// Validate checks field shapes and enum membership.
func (p *Profile) Validate() error {
	return validate.Struct(p)
}

// HasInterest reports whether the profile lists the interest tag exactly.
func (p *Profile) HasInterest(interest string) bool {
	for _, i := range p.Interests {
		if i == interest {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stored records are never shared with callers.
func (p Profile) Clone() Profile {
	out := p
	if p.AverageHandicap != nil {
		h := *p.AverageHandicap
		out.AverageHandicap = &h
	}
	out.Interests = cloneTags(p.Interests)
	out.MatchGoals = cloneTags(p.MatchGoals)
	out.PersonalityTraits = cloneTags(p.PersonalityTraits)
	return out
}

func cloneTags(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// Handicap is a convenience constructor for the optional handicap field.
func Handicap(v float64) *float64 { return &v }

// ProfileUpdate is a profile submission waiting on the ingestion queue.
type ProfileUpdate struct {
	UpdateID    string  // idempotency key
	Profile     Profile // full replacement record
	SubmittedAt time.Time
}
