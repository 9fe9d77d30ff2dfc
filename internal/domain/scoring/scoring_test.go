package scoring_test

import (
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/okian/fairway/internal/domain/model"
	scoring "github.com/okian/fairway/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func fullProfile() *model.Profile {
	return &model.Profile{
		ID:                 "self",
		SkillLevel:         model.SkillIntermediate,
		AverageHandicap:    model.Handicap(12),
		Interests:          []string{"Competitive Play", "Casual Rounds"},
		MatchGoals:         []string{"stay active"},
		PersonalityTraits:  []string{"competitive"},
		PaceOfPlay:         model.PaceSteady,
		PreferredRoundTime: model.RoundMorning,
		PlayFrequency:      model.FrequencyWeekly,
		SwingTendency:      model.SwingStraight,
		GroupPreference:    model.GroupFlexible,
	}
}

func TestCompute_Degenerate(t *testing.T) {
	Convey("Given a missing profile on either side", t, func() {
		p := fullProfile()

		Convey("When self is nil", func() {
			c := scoring.Compute(nil, p)

			Convey("Then the score is zero with an empty breakdown", func() {
				So(c.Score, ShouldEqual, 0)
				So(c.Breakdown, ShouldNotBeNil)
				So(c.Breakdown, ShouldBeEmpty)
			})
		})

		Convey("When other is nil", func() {
			c := scoring.Compute(p, nil)
			So(c.Score, ShouldEqual, 0)
			So(c.Breakdown, ShouldBeEmpty)
		})

		Convey("When both are nil", func() {
			c := scoring.Compute(nil, nil)
			So(c.Score, ShouldEqual, 0)
			So(c.Breakdown, ShouldBeEmpty)
		})
	})

	Convey("Given two profiles with no comparable attributes", t, func() {
		a := &model.Profile{ID: "a", SkillLevel: model.SkillExpert}
		b := &model.Profile{ID: "b", Interests: []string{"x"}}

		Convey("Then nothing is computed and the score is zero", func() {
			c := scoring.Compute(a, b)
			So(c.Score, ShouldEqual, 0)
			So(c.Breakdown, ShouldBeEmpty)
		})
	})
}

func TestCompute_Reflexive(t *testing.T) {
	Convey("Given a fully populated profile", t, func() {
		p := fullProfile()

		Convey("When compared with an identical copy", func() {
			other := p.Clone()
			c := scoring.Compute(p, &other)

			Convey("Then the score is 100", func() {
				So(c.Score, ShouldEqual, 100)
			})

			Convey("And every factor is present at 100", func() {
				So(len(c.Breakdown), ShouldEqual, len(scoring.Factors()))
				for _, f := range scoring.Factors() {
					So(c.Breakdown[f], ShouldEqual, 100)
				}
			})
		})

		Convey("When compared with itself", func() {
			c := scoring.Compute(p, p)
			So(c.Score, ShouldEqual, 100)
		})
	})

	Convey("Given the reference profile without a handicap", t, func() {
		self := fullProfile()
		self.AverageHandicap = nil
		other := self.Clone()

		Convey("Then the nine applicable factors are 100 and handicap is absent", func() {
			c := scoring.Compute(self, &other)
			So(c.Score, ShouldEqual, 100)
			So(len(c.Breakdown), ShouldEqual, 9)
			_, ok := c.Breakdown[scoring.FactorHandicap]
			So(ok, ShouldBeFalse)
		})
	})
}

func TestCompute_Factors(t *testing.T) {
	Convey("Given profiles that differ in a single factor", t, func() {
		Convey("When skill levels are beginner and expert", func() {
			a := &model.Profile{SkillLevel: model.SkillBeginner}
			b := &model.Profile{SkillLevel: model.SkillExpert}
			c := scoring.Compute(a, b)

			Convey("Then skill is 0 and so is the score", func() {
				So(c.Breakdown[scoring.FactorSkill], ShouldEqual, 0)
				So(c.Score, ShouldEqual, 0)
				So(len(c.Breakdown), ShouldEqual, 1)
			})
		})

		Convey("When skill levels are one step apart", func() {
			a := &model.Profile{SkillLevel: model.SkillAdvanced}
			b := &model.Profile{SkillLevel: model.SkillExpert}
			c := scoring.Compute(a, b)
			So(c.Breakdown[scoring.FactorSkill], ShouldEqual, 67)
			So(c.Score, ShouldEqual, 67)
		})

		Convey("When one skill level is unknown", func() {
			a := &model.Profile{SkillLevel: "pro"}
			b := &model.Profile{SkillLevel: model.SkillExpert}
			c := scoring.Compute(a, b)
			So(c.Breakdown, ShouldBeEmpty)
		})

		Convey("When handicaps are 5 strokes apart", func() {
			a := &model.Profile{AverageHandicap: model.Handicap(10)}
			b := &model.Profile{AverageHandicap: model.Handicap(15)}
			So(scoring.Compute(a, b).Breakdown[scoring.FactorHandicap], ShouldEqual, 75)
		})

		Convey("When handicaps are more than 20 strokes apart", func() {
			a := &model.Profile{AverageHandicap: model.Handicap(-2)}
			b := &model.Profile{AverageHandicap: model.Handicap(36)}
			So(scoring.Compute(a, b).Breakdown[scoring.FactorHandicap], ShouldEqual, 0)
		})

		Convey("When a handicap is NaN", func() {
			a := &model.Profile{AverageHandicap: model.Handicap(math.NaN())}
			b := &model.Profile{AverageHandicap: model.Handicap(3)}
			_, ok := scoring.Compute(a, b).Breakdown[scoring.FactorHandicap]
			So(ok, ShouldBeFalse)
		})

		Convey("When a handicap is zero", func() {
			a := &model.Profile{AverageHandicap: model.Handicap(0)}
			b := &model.Profile{AverageHandicap: model.Handicap(0)}
			So(scoring.Compute(a, b).Breakdown[scoring.FactorHandicap], ShouldEqual, 100)
		})

		Convey("When interests partially overlap", func() {
			a := &model.Profile{Interests: []string{"a", "b"}}
			b := &model.Profile{Interests: []string{"b", "c"}}
			c := scoring.Compute(a, b)
			So(c.Breakdown[scoring.FactorInterests], ShouldEqual, 33)
			So(c.Score, ShouldEqual, 33)
		})

		Convey("When a tag list repeats an entry", func() {
			a := &model.Profile{MatchGoals: []string{"x"}}
			b := &model.Profile{MatchGoals: []string{"x", "x", "y"}}
			So(scoring.Compute(a, b).Breakdown[scoring.FactorGoals], ShouldEqual, 50)
		})

		Convey("When one tag list is empty", func() {
			a := &model.Profile{PersonalityTraits: []string{}}
			b := &model.Profile{PersonalityTraits: []string{"patient"}}
			_, ok := scoring.Compute(a, b).Breakdown[scoring.FactorTraits]
			So(ok, ShouldBeFalse)
		})

		Convey("When tag lists are disjoint", func() {
			a := &model.Profile{PersonalityTraits: []string{"patient"}}
			b := &model.Profile{PersonalityTraits: []string{"energetic"}}
			c := scoring.Compute(a, b)
			v, ok := c.Breakdown[scoring.FactorTraits]
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 0)
		})

		Convey("When paces differ", func() {
			a := &model.Profile{PaceOfPlay: model.PaceFast}
			b := &model.Profile{PaceOfPlay: model.PaceRelaxed}
			So(scoring.Compute(a, b).Breakdown[scoring.FactorPace], ShouldEqual, 40)
		})

		Convey("When round times are progressively further apart", func() {
			expect := map[model.RoundTime]int{
				model.RoundDawn:      100,
				model.RoundMorning:   70,
				model.RoundMidday:    40,
				model.RoundAfternoon: 20,
				model.RoundEvening:   20,
			}
			for rt, want := range expect {
				a := &model.Profile{PreferredRoundTime: model.RoundDawn}
				b := &model.Profile{PreferredRoundTime: rt}
				So(scoring.Compute(a, b).Breakdown[scoring.FactorRoundTime], ShouldEqual, want)
			}
		})

		Convey("When frequencies are two steps apart", func() {
			a := &model.Profile{PlayFrequency: model.FrequencyMonthly}
			b := &model.Profile{PlayFrequency: model.FrequencyWeekly}
			So(scoring.Compute(a, b).Breakdown[scoring.FactorFrequency], ShouldEqual, 33)
		})

		Convey("When swing tendencies are compared", func() {
			left := &model.Profile{SwingTendency: model.SwingLeft}
			right := &model.Profile{SwingTendency: model.SwingRight}
			straight := &model.Profile{SwingTendency: model.SwingStraight}
			So(scoring.Compute(left, left).Breakdown[scoring.FactorSwing], ShouldEqual, 100)
			So(scoring.Compute(left, straight).Breakdown[scoring.FactorSwing], ShouldEqual, 70)
			So(scoring.Compute(straight, right).Breakdown[scoring.FactorSwing], ShouldEqual, 70)
			So(scoring.Compute(left, right).Breakdown[scoring.FactorSwing], ShouldEqual, 40)
		})

		Convey("When group preferences are compared", func() {
			two := &model.Profile{GroupPreference: model.GroupTwosome}
			four := &model.Profile{GroupPreference: model.GroupFoursome}
			flex := &model.Profile{GroupPreference: model.GroupFlexible}
			So(scoring.Compute(two, two).Breakdown[scoring.FactorGroup], ShouldEqual, 100)
			So(scoring.Compute(two, flex).Breakdown[scoring.FactorGroup], ShouldEqual, 100)
			So(scoring.Compute(flex, four).Breakdown[scoring.FactorGroup], ShouldEqual, 100)
			So(scoring.Compute(two, four).Breakdown[scoring.FactorGroup], ShouldEqual, 60)
		})
	})
}

func TestCompute_Weighting(t *testing.T) {
	Convey("Given two computed factors with different weights", t, func() {
		// skill 0.18 at 1.0, pace 0.10 at 0.4 -> (0.18 + 0.04) / 0.28 = 0.7857
		a := &model.Profile{SkillLevel: model.SkillAdvanced, PaceOfPlay: model.PaceFast}
		b := &model.Profile{SkillLevel: model.SkillAdvanced, PaceOfPlay: model.PaceSteady}

		Convey("Then the score is the weighted average over computed factors only", func() {
			c := scoring.Compute(a, b)
			So(c.Score, ShouldEqual, 79)
			So(c.Breakdown[scoring.FactorSkill], ShouldEqual, 100)
			So(c.Breakdown[scoring.FactorPace], ShouldEqual, 40)
		})
	})

	Convey("Given the published weights", t, func() {
		Convey("Then they sum to one", func() {
			total := 0.0
			for _, f := range scoring.Factors() {
				total += scoring.Weight(f)
			}
			So(total, ShouldAlmostEqual, 1.0, 1e-9)
			So(scoring.Weight("unknown"), ShouldEqual, 0)
		})
	})
}

func TestCompute_Properties(t *testing.T) {
	Convey("Given randomly generated profile pairs", t, func() {
		rng := rand.New(rand.NewSource(7))
		pairs := make([][2]*model.Profile, 500)
		for i := range pairs {
			pairs[i] = [2]*model.Profile{randomProfile(rng), randomProfile(rng)}
		}

		Convey("Then every score and breakdown value is within 0..100", func() {
			for _, p := range pairs {
				c := scoring.Compute(p[0], p[1])
				So(c.Score, ShouldBeBetweenOrEqual, 0, 100)
				for _, v := range c.Breakdown {
					So(v, ShouldBeBetweenOrEqual, 0, 100)
				}
			}
		})

		Convey("And overlap factors are symmetric", func() {
			for _, p := range pairs {
				ab := scoring.Compute(p[0], p[1])
				ba := scoring.Compute(p[1], p[0])
				for _, f := range []scoring.Factor{scoring.FactorInterests, scoring.FactorGoals, scoring.FactorTraits} {
					So(ab.Breakdown[f], ShouldEqual, ba.Breakdown[f])
				}
			}
		})

		Convey("And results are deterministic", func() {
			for _, p := range pairs {
				So(scoring.Compute(p[0], p[1]), ShouldResemble, scoring.Compute(p[0], p[1]))
			}
		})

		Convey("And fields without a factor never change the score", func() {
			for _, p := range pairs {
				before := scoring.Compute(p[0], p[1])
				mod := p[1].Clone()
				mod.DisplayName = "Someone Else"
				mod.Bio = "likes long par fives"
				mod.TrustScore = 99
				So(scoring.Compute(p[0], &mod), ShouldResemble, before)
			}
		})

		Convey("And inputs are not mutated", func() {
			for _, p := range pairs {
				a, b := p[0].Clone(), p[1].Clone()
				scoring.Compute(p[0], p[1])
				So(*p[0], ShouldResemble, a)
				So(*p[1], ShouldResemble, b)
			}
		})
	})

	Convey("Given concurrent callers", t, func() {
		self := fullProfile()
		other := &model.Profile{SkillLevel: model.SkillExpert, Interests: []string{"Casual Rounds"}}
		want := scoring.Compute(self, other)

		Convey("Then every goroutine sees the same result", func() {
			var wg sync.WaitGroup
			results := make([]scoring.Compatibility, 64)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					results[i] = scoring.Compute(self, other)
				}(i)
			}
			wg.Wait()
			for _, r := range results {
				So(r, ShouldResemble, want)
			}
		})
	})
}

func TestCompatibility_Top(t *testing.T) {
	Convey("Given a compatibility breakdown", t, func() {
		c := scoring.Compatibility{
			Score: 70,
			Breakdown: map[scoring.Factor]int{
				scoring.FactorPace:      40,
				scoring.FactorSkill:     100,
				scoring.FactorGroup:     100,
				scoring.FactorInterests: 33,
				scoring.FactorSwing:     70,
			},
		}

		Convey("When asking for the top four", func() {
			top := c.Top(4)

			Convey("Then entries are ordered by value with canonical tie order", func() {
				So(len(top), ShouldEqual, 4)
				So(top[0].Factor, ShouldEqual, scoring.FactorSkill)
				So(top[1].Factor, ShouldEqual, scoring.FactorGroup)
				So(top[2].Factor, ShouldEqual, scoring.FactorSwing)
				So(top[3].Factor, ShouldEqual, scoring.FactorPace)
				So(top[0].Label, ShouldEqual, "Skill level")
			})
		})

		Convey("When asking for all entries", func() {
			So(len(c.Top(0)), ShouldEqual, 5)
		})

		Convey("When the breakdown is empty", func() {
			So(scoring.Compatibility{}.Top(4), ShouldBeEmpty)
		})
	})
}

func randomProfile(rng *rand.Rand) *model.Profile {
	pick := func(values ...string) string {
		i := rng.Intn(len(values) + 1)
		if i == len(values) {
			return ""
		}
		return values[i]
	}
	tags := func(pool ...string) []string {
		var out []string
		for _, t := range pool {
			if rng.Intn(2) == 0 {
				out = append(out, t)
			}
		}
		return out
	}
	p := &model.Profile{
		ID:                 "p",
		SkillLevel:         model.SkillLevel(pick("beginner", "intermediate", "advanced", "expert", "unknown")),
		Interests:          tags("a", "b", "c", "d"),
		MatchGoals:         tags("g1", "g2", "g3"),
		PersonalityTraits:  tags("t1", "t2", "t3", "t4", "t5"),
		PaceOfPlay:         model.Pace(pick("fast", "steady", "relaxed")),
		PreferredRoundTime: model.RoundTime(pick("dawn", "morning", "midday", "afternoon", "evening")),
		PlayFrequency:      model.Frequency(pick("monthly", "twice_per_month", "weekly", "multiple_per_week")),
		SwingTendency:      model.Swing(pick("left", "straight", "right")),
		GroupPreference:    model.GroupSize(pick("twosome", "threesome", "foursome", "flexible")),
	}
	if rng.Intn(3) > 0 {
		p.AverageHandicap = model.Handicap(rng.Float64()*60 - 10)
	}
	return p
}
