package model

// Option is a selectable profile value with its display text.
type Option struct {
	Value       string `json:"value" yaml:"value"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Catalog lists the values offered when a golfer fills in a profile.
type Catalog struct {
	SkillLevels       []Option `json:"skill_levels"`
	Interests         []Option `json:"interests"`
	MatchGoals        []Option `json:"match_goals"`
	PersonalityTraits []Option `json:"personality_traits"`
	PlayFrequencies   []Option `json:"play_frequencies"`
	RoundTimes        []Option `json:"round_times"`
	PaceOptions       []Option `json:"pace_options"`
	SwingTendencies   []Option `json:"swing_tendencies"`
	GroupPreferences  []Option `json:"group_preferences"`
}

// DefaultCatalog returns the built-in option lists.
func DefaultCatalog() Catalog {
	return Catalog{
		SkillLevels: []Option{
			{Value: string(SkillBeginner), Label: "Beginner", Description: "New to golf or learning the basics"},
			{Value: string(SkillIntermediate), Label: "Intermediate", Description: "Comfortable with fundamentals"},
			{Value: string(SkillAdvanced), Label: "Advanced", Description: "Consistent player with good technique"},
			{Value: string(SkillExpert), Label: "Expert", Description: "Low handicap, competitive player"},
		},
		Interests: []Option{
			{Value: "Competitive Play", Label: "Competitive Play"},
			{Value: "Casual Rounds", Label: "Casual Rounds"},
			{Value: "Social Networking", Label: "Social Networking"},
			{Value: "Skill Improvement", Label: "Skill Improvement"},
			{Value: "Course Exploration", Label: "Course Exploration"},
			{Value: "Tournament Play", Label: "Tournament Play"},
			{Value: "Business Networking", Label: "Business Networking"},
			{Value: "Weekend Warrior", Label: "Weekend Warrior"},
		},
		MatchGoals: []Option{
			{Value: "meet new people", Label: "Meet new people"},
			{Value: "relax outdoors", Label: "Relax outdoors"},
			{Value: "stay active", Label: "Stay active"},
			{Value: "learn fundamentals", Label: "Learn fundamentals"},
			{Value: "sharpen skills", Label: "Sharpen skills"},
			{Value: "compete seriously", Label: "Compete seriously"},
			{Value: "mentor others", Label: "Mentor others"},
			{Value: "host clients", Label: "Host clients"},
		},
		PersonalityTraits: []Option{
			{Value: "competitive", Label: "Competitive"},
			{Value: "easygoing", Label: "Easygoing"},
			{Value: "supportive", Label: "Supportive"},
			{Value: "focused", Label: "Focused"},
			{Value: "strategic", Label: "Strategic"},
			{Value: "patient", Label: "Patient"},
			{Value: "sociable", Label: "Sociable"},
			{Value: "energetic", Label: "Energetic"},
			{Value: "encouraging", Label: "Encouraging"},
			{Value: "disciplined", Label: "Disciplined"},
			{Value: "confident", Label: "Confident"},
			{Value: "analytical", Label: "Analytical"},
		},
		PlayFrequencies: []Option{
			{Value: string(FrequencyMultiplePerWeek), Label: "Multiple times per week"},
			{Value: string(FrequencyWeekly), Label: "Weekly"},
			{Value: string(FrequencyTwicePerMonth), Label: "2-3 times per month"},
			{Value: string(FrequencyMonthly), Label: "Monthly"},
		},
		RoundTimes: []Option{
			{Value: string(RoundDawn), Label: "Dawn / first light"},
			{Value: string(RoundMorning), Label: "Morning"},
			{Value: string(RoundMidday), Label: "Midday"},
			{Value: string(RoundAfternoon), Label: "Afternoon"},
			{Value: string(RoundEvening), Label: "Twilight / evening"},
		},
		PaceOptions: []Option{
			{Value: string(PaceFast), Label: "Fast (keep it moving)"},
			{Value: string(PaceSteady), Label: "Steady (comfortable pace)"},
			{Value: string(PaceRelaxed), Label: "Relaxed (take our time)"},
		},
		SwingTendencies: []Option{
			{Value: string(SwingLeft), Label: "Miss left"},
			{Value: string(SwingStraight), Label: "Pretty straight"},
			{Value: string(SwingRight), Label: "Miss right"},
		},
		GroupPreferences: []Option{
			{Value: string(GroupTwosome), Label: "Prefer twosomes"},
			{Value: string(GroupThreesome), Label: "Prefer threesomes"},
			{Value: string(GroupFoursome), Label: "Prefer foursomes"},
			{Value: string(GroupFlexible), Label: "Flexible on group size"},
		},
	}
}
