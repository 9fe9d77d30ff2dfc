package loadgen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/fairway/internal/adapters/http/api"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/internal/domain/types"
	"github.com/okian/fairway/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// newTestServer serves the fairway API from an in-memory service.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(service.WithWorkerCount(4))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start service: %v", err)
	}
	mux := http.NewServeMux()
	api.NewServer(svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(func() {
		srv.Close()
		_ = svc.Stop(context.Background())
	})
	return srv
}

func testConfig(baseURL string) *Config {
	return &Config{
		BaseURL:  baseURL,
		Profiles: 40,
		Workers:  4,
		Timeout:  5 * time.Second,
		Settle:   5 * time.Second,
		Verify:   5,
		Seed:     7,
	}
}

func TestConfigValidate(t *testing.T) {
	Convey("Given load run configurations", t, func() {
		Convey("A complete config should be valid", func() {
			So(testConfig("http://localhost:9080").Validate(), ShouldBeNil)
		})

		Convey("Missing or non-positive settings should be rejected", func() {
			mutate := []func(*Config){
				func(c *Config) { c.BaseURL = "" },
				func(c *Config) { c.Profiles = 1 },
				func(c *Config) { c.Workers = 0 },
				func(c *Config) { c.Timeout = 0 },
				func(c *Config) { c.Settle = -time.Second },
			}
			for _, m := range mutate {
				cfg := testConfig("http://localhost:9080")
				m(cfg)
				So(cfg.Validate(), ShouldNotBeNil)
			}
		})

		Convey("A seed file should lift the profile count requirement", func() {
			cfg := testConfig("http://localhost:9080")
			cfg.Profiles = 0
			cfg.SeedFile = "golfers.yaml"
			So(cfg.Validate(), ShouldBeNil)
		})
	})
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		Convey("Equal seeds should produce equal profiles", func() {
			a := NewGenerator(42).Profile("golfer")
			b := NewGenerator(42).Profile("golfer")
			So(a, ShouldResemble, b)
		})

		Convey("Every generated profile should be valid and unique", func() {
			profiles := NewGenerator(3).Profiles(200)
			seen := make(map[string]bool, len(profiles))
			for i := range profiles {
				So(profiles[i].Validate(), ShouldBeNil)
				So(seen[profiles[i].ID], ShouldBeFalse)
				seen[profiles[i].ID] = true
			}
		})
	})
}

func rankedResult(self *model.Profile, others ...model.Profile) types.DiscoverResult {
	res := types.DiscoverResult{UserID: self.ID, Total: len(others)}
	for i := range others {
		c := types.Candidate{
			Rank:          i + 1,
			Profile:       others[i],
			Compatibility: scoring.Compute(self, &others[i]),
		}
		if i == 0 {
			res.Spotlight = &types.Spotlight{Candidate: c}
			continue
		}
		res.Candidates = append(res.Candidates, c)
	}
	return res
}

func TestVerifyRanking(t *testing.T) {
	Convey("Given a golfer and two candidates", t, func() {
		self := model.Profile{ID: "self", SkillLevel: model.SkillIntermediate, PaceOfPlay: model.Pace("steady")}
		twin := self
		twin.ID = "twin"
		other := model.Profile{ID: "other", SkillLevel: model.SkillExpert, PaceOfPlay: model.Pace("fast")}

		Convey("A correctly ordered result should verify", func() {
			res := rankedResult(&self, twin, other)
			So(verifyRanking(&self, &res), ShouldBeNil)
		})

		Convey("Scores that rise down the list should fail", func() {
			res := rankedResult(&self, other, twin)
			So(verifyRanking(&self, &res), ShouldNotBeNil)
		})

		Convey("A tampered score should fail", func() {
			res := rankedResult(&self, twin, other)
			res.Candidates[0].Compatibility.Score = 0
			So(verifyRanking(&self, &res), ShouldNotBeNil)
		})

		Convey("Listing the golfer themself should fail", func() {
			res := rankedResult(&self, self, other)
			So(verifyRanking(&self, &res), ShouldNotBeNil)
		})

		Convey("A gap in ranks should fail", func() {
			res := rankedResult(&self, twin, other)
			res.Candidates[0].Rank = 3
			So(verifyRanking(&self, &res), ShouldNotBeNil)
		})

		Convey("Listing more candidates than the total should fail", func() {
			res := rankedResult(&self, twin, other)
			res.Total = 1
			So(verifyRanking(&self, &res), ShouldNotBeNil)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running fairway server", t, func() {
		srv := newTestServer(t)

		Convey("A generated run should submit, settle and verify", func() {
			stats, err := Run(context.Background(), testConfig(srv.URL))
			So(err, ShouldBeNil)
			So(stats.Generated, ShouldEqual, 40)
			So(stats.Accepted, ShouldEqual, 40)
			So(stats.Failed, ShouldEqual, 0)
			So(stats.Visible, ShouldEqual, 40)
			So(stats.Verified, ShouldEqual, 5)
		})

		Convey("A seed file should replace generation", func() {
			path := filepath.Join(t.TempDir(), "golfers.yaml")
			doc := `- id: alice
  skill_level: intermediate
  interests: [Casual Rounds]
- id: bob
  skill_level: advanced
  interests: [Casual Rounds, Tournament Play]
- id: carol
  skill_level: beginner
`
			So(os.WriteFile(path, []byte(doc), 0o600), ShouldBeNil)

			cfg := testConfig(srv.URL)
			cfg.SeedFile = path
			stats, err := Run(context.Background(), cfg)
			So(err, ShouldBeNil)
			So(stats.Generated, ShouldEqual, 3)
			So(stats.Visible, ShouldEqual, 3)
			So(stats.Verified, ShouldEqual, 3)
		})

		Convey("A missing seed file should fail", func() {
			cfg := testConfig(srv.URL)
			cfg.SeedFile = filepath.Join(t.TempDir(), "absent.yaml")
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})

	Convey("Given an unreachable server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		Convey("The health check should fail the run", func() {
			cfg := testConfig(srv.URL)
			cfg.Timeout = time.Second
			_, err := Run(context.Background(), cfg)
			So(err, ShouldNotBeNil)
		})
	})
}
