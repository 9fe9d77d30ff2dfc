package loadgen

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/fairway/internal/domain/model"
)

// Share of generated golfers that leave an attribute out, in percent.
const (
	missingSkillPct    = 5
	missingAttrPct     = 15
	maxTagsPerCategory = 4
	maxTrustScore      = 5
	maxHandicapTenths  = 400
)

// Generator builds random but valid golfer profiles.
type Generator struct {
	rng     *rand.Rand
	catalog model.Catalog
}

// NewGenerator returns a generator; equal seeds yield equal attribute
// sequences. A zero seed picks a random one.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Generator{
		rng:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		catalog: model.DefaultCatalog(),
	}
}

// Profiles returns n profiles with unique ids.
func (g *Generator) Profiles(n int) []model.Profile {
	out := make([]model.Profile, n)
	for i := range out {
		out[i] = g.Profile(uuid.NewString())
	}
	return out
}

// Profile returns one random profile for id.
func (g *Generator) Profile(id string) model.Profile {
	p := model.Profile{
		ID:         id,
		TrustScore: float64(g.rng.IntN(maxTrustScore*10+1)) / 10,
	}
	if !g.skip(missingSkillPct) {
		p.SkillLevel = model.SkillLevel(g.pick(g.catalog.SkillLevels))
	}
	if !g.skip(missingAttrPct) {
		h := float64(g.rng.IntN(maxHandicapTenths+1)) / 10
		p.AverageHandicap = &h
	}
	p.Interests = g.tags(g.catalog.Interests)
	p.MatchGoals = g.tags(g.catalog.MatchGoals)
	p.PersonalityTraits = g.tags(g.catalog.PersonalityTraits)
	if !g.skip(missingAttrPct) {
		p.PaceOfPlay = model.Pace(g.pick(g.catalog.PaceOptions))
	}
	if !g.skip(missingAttrPct) {
		p.PreferredRoundTime = model.RoundTime(g.pick(g.catalog.RoundTimes))
	}
	if !g.skip(missingAttrPct) {
		p.PlayFrequency = model.Frequency(g.pick(g.catalog.PlayFrequencies))
	}
	if !g.skip(missingAttrPct) {
		p.SwingTendency = model.Swing(g.pick(g.catalog.SwingTendencies))
	}
	if !g.skip(missingAttrPct) {
		p.GroupPreference = model.GroupSize(g.pick(g.catalog.GroupPreferences))
	}
	return p
}

func (g *Generator) skip(pct int) bool {
	return g.rng.IntN(100) < pct
}

func (g *Generator) pick(opts []model.Option) string {
	return opts[g.rng.IntN(len(opts))].Value
}

// tags picks up to maxTagsPerCategory distinct values, possibly none.
func (g *Generator) tags(opts []model.Option) []string {
	n := g.rng.IntN(min(maxTagsPerCategory, len(opts)) + 1)
	if n == 0 {
		return nil
	}
	out := make([]string, 0, n)
	for _, i := range g.rng.Perm(len(opts))[:n] {
		out = append(out, opts[i].Value)
	}
	return out
}
