package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/fairway/internal/adapters/http/api"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/scoring"
	"github.com/okian/fairway/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records the last call and returns canned results.
type mockDependencies struct {
	submitResult types.SubmitResult
	submitErr    error
	lastUpdateID string
	lastProfile  model.Profile

	profile    model.Profile
	profileErr error

	discover     types.DiscoverResult
	discoverErr  error
	lastUserID   string
	lastQuery    service.DiscoverQuery
	pair         types.PairResult
	pairErr      error
	lastPairIDs  [2]string
	request      model.MatchRequest
	requestErr   error
	lastMessage  string
	lastAccept   bool
	lastResponse string
	board        types.RequestBoard
	boardErr     error
	summary      types.Summary
	summaryErr   error
}

func (m *mockDependencies) SubmitProfile(_ context.Context, updateID string, p model.Profile) (types.SubmitResult, error) {
	m.lastUpdateID, m.lastProfile = updateID, p
	return m.submitResult, m.submitErr
}

func (m *mockDependencies) Profile(_ context.Context, id string) (model.Profile, error) {
	m.lastUserID = id
	return m.profile, m.profileErr
}

func (m *mockDependencies) Discover(_ context.Context, userID string, q service.DiscoverQuery) (types.DiscoverResult, error) {
	m.lastUserID, m.lastQuery = userID, q
	return m.discover, m.discoverErr
}

func (m *mockDependencies) Compatibility(_ context.Context, selfID, otherID string) (types.PairResult, error) {
	m.lastPairIDs = [2]string{selfID, otherID}
	return m.pair, m.pairErr
}

func (m *mockDependencies) RequestMatch(_ context.Context, requesterID, matchedID, message string) (model.MatchRequest, error) {
	m.lastPairIDs, m.lastMessage = [2]string{requesterID, matchedID}, message
	return m.request, m.requestErr
}

func (m *mockDependencies) RespondMatch(_ context.Context, requestID, responderID string, accept bool) (model.MatchRequest, error) {
	m.lastUserID, m.lastResponse, m.lastAccept = requestID, responderID, accept
	return m.request, m.requestErr
}

func (m *mockDependencies) Requests(_ context.Context, userID string) (types.RequestBoard, error) {
	m.lastUserID = userID
	return m.board, m.boardErr
}

func (m *mockDependencies) Summary(_ context.Context, userID string) (types.Summary, error) {
	m.lastUserID = userID
	return m.summary, m.summaryErr
}

func (m *mockDependencies) Catalog() types.CatalogResponse {
	return types.CatalogResponse{
		Catalog: model.DefaultCatalog(),
		Factors: []types.FactorInfo{{Factor: scoring.FactorSkill, Label: "Skill level", Weight: 0.18}},
	}
}

func (m *mockDependencies) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "totalProfiles": 3}
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps).Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, http.NoBody)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &body)
	return body.Code
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the health endpoint exposes metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "fairway_")
		})

		Convey("And the stats endpoint returns JSON", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldEqual, "application/json; charset=utf-8")
			var stats map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &stats), ShouldBeNil)
			So(stats["started"], ShouldEqual, true)
		})

		Convey("And wrong methods are refused", func() {
			w := serve(mux, http.MethodDelete, "/profiles/golfer-1", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestProfilesHandler(t *testing.T) {
	Convey("Given the profiles routes", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When a new profile is submitted", func() {
			deps.submitResult = types.SubmitResult{UpdateID: "u-1", ProfileID: "golfer-1", Status: service.StatusAccepted}
			w := serve(mux, http.MethodPost, "/profiles",
				`{"update_id":"u-1","profile":{"id":"golfer-1","skill_level":"advanced","average_handicap":9.5}}`)

			Convey("Then it is accepted for processing", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.lastUpdateID, ShouldEqual, "u-1")
				So(deps.lastProfile.SkillLevel, ShouldEqual, model.SkillAdvanced)
				So(*deps.lastProfile.AverageHandicap, ShouldEqual, 9.5)
				So(w.Body.String(), ShouldContainSubstring, `"status":"accepted"`)
			})
		})

		Convey("When a duplicate is submitted", func() {
			deps.submitResult = types.SubmitResult{UpdateID: "u-1", Status: service.StatusDuplicate}
			w := serve(mux, http.MethodPost, "/profiles", `{"update_id":"u-1","profile":{"id":"golfer-1"}}`)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When the body is malformed", func() {
			for _, body := range []string{`{`, `{"profile":{"id":"x","unknown":1}}`, ``} {
				w := serve(mux, http.MethodPost, "/profiles", body)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}
		})

		Convey("When the service reports errors", func() {
			cases := map[error]int{
				fmt.Errorf("%w: skill_level", service.ErrBadRequest): http.StatusBadRequest,
				service.ErrBackpressure:                              http.StatusTooManyRequests,
				service.ErrNotStarted:                                http.StatusServiceUnavailable,
				errors.New("boom"):                                   http.StatusInternalServerError,
			}
			for err, status := range cases {
				deps.submitErr = err
				w := serve(mux, http.MethodPost, "/profiles", `{"profile":{"id":"golfer-1"}}`)
				So(w.Code, ShouldEqual, status)
			}
		})

		Convey("When reading a profile", func() {
			deps.profile = model.Profile{ID: "golfer-1", TrustScore: 4.5}
			w := serve(mux, http.MethodGet, "/profiles/golfer-1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastUserID, ShouldEqual, "golfer-1")
			So(w.Body.String(), ShouldContainSubstring, `"trust_score":4.5`)

			deps.profileErr = service.ErrNotFound
			w = serve(mux, http.MethodGet, "/profiles/ghost", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})
	})
}

func TestMatchesHandler(t *testing.T) {
	Convey("Given the matches routes", t, func() {
		deps := &mockDependencies{
			discover: types.DiscoverResult{UserID: "golfer-1", Candidates: []types.Candidate{}, Interests: []string{}},
		}
		mux := newMux(deps)

		Convey("When discovering with every parameter", func() {
			w := serve(mux, http.MethodGet, "/matches/golfer-1?skill=expert&interest=Night+Golf&limit=5&active=2", "")

			Convey("Then the query is passed through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastUserID, ShouldEqual, "golfer-1")
				So(deps.lastQuery, ShouldResemble, service.DiscoverQuery{
					Skill: model.SkillExpert, Interest: "Night Golf", Limit: 5, Active: 2,
				})
				So(w.Body.String(), ShouldContainSubstring, `"user_id":"golfer-1"`)
			})
		})

		Convey("When numeric parameters are malformed", func() {
			for _, target := range []string{"/matches/golfer-1?limit=ten", "/matches/golfer-1?active=x"} {
				w := serve(mux, http.MethodGet, target, "")
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When the service rejects the query", func() {
			deps.discoverErr = fmt.Errorf("%w: unknown skill level", service.ErrBadRequest)
			w := serve(mux, http.MethodGet, "/matches/golfer-1?skill=pro", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When scoring a pair", func() {
			deps.pair = types.PairResult{SelfID: "a", OtherID: "b", Score: 87}
			w := serve(mux, http.MethodGet, "/compatibility?self=a&other=b", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastPairIDs, ShouldResemble, [2]string{"a", "b"})
			So(w.Body.String(), ShouldContainSubstring, `"score":87`)

			deps.pairErr = fmt.Errorf("profile %q: %w", "b", service.ErrNotFound)
			w = serve(mux, http.MethodGet, "/compatibility?self=a&other=b", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRequestsHandler(t *testing.T) {
	Convey("Given the match request routes", t, func() {
		deps := &mockDependencies{request: model.MatchRequest{ID: "req-1", Status: model.StatusPending}}
		mux := newMux(deps)

		Convey("When creating a request", func() {
			w := serve(mux, http.MethodPost, "/match-requests",
				`{"requester_id":"a","matched_user_id":"b","message":"9 holes?"}`)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(deps.lastPairIDs, ShouldResemble, [2]string{"a", "b"})
			So(deps.lastMessage, ShouldEqual, "9 holes?")
		})

		Convey("When the pair already has an open request", func() {
			deps.requestErr = service.ErrAlreadyExists
			w := serve(mux, http.MethodPost, "/match-requests", `{"requester_id":"a","matched_user_id":"b"}`)
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "conflict")
		})

		Convey("When accepting and declining", func() {
			w := serve(mux, http.MethodPost, "/match-requests/req-1/accept", `{"responder_id":"b"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastUserID, ShouldEqual, "req-1")
			So(deps.lastResponse, ShouldEqual, "b")
			So(deps.lastAccept, ShouldBeTrue)

			w = serve(mux, http.MethodPost, "/match-requests/req-1/decline", `{"responder_id":"b"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastAccept, ShouldBeFalse)
		})

		Convey("When responding is not allowed", func() {
			deps.requestErr = fmt.Errorf("%w: only the invited golfer may respond", service.ErrForbidden)
			w := serve(mux, http.MethodPost, "/match-requests/req-1/accept", `{"responder_id":"a"}`)
			So(w.Code, ShouldEqual, http.StatusForbidden)

			deps.requestErr = service.ErrNotPending
			w = serve(mux, http.MethodPost, "/match-requests/req-1/accept", `{"responder_id":"b"}`)
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "not_pending")
		})

		Convey("When the responder is missing", func() {
			deps.lastUserID = ""
			w := serve(mux, http.MethodPost, "/match-requests/req-1/accept", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "bad_request")
			So(w.Body.String(), ShouldContainSubstring, "responder_id is required")
			So(deps.lastUserID, ShouldBeEmpty)
		})

		Convey("When listing a golfer's requests", func() {
			deps.board = types.RequestBoard{
				Incoming: []model.MatchRequest{{ID: "req-1"}},
				Outgoing: []model.MatchRequest{},
				Accepted: []model.MatchRequest{},
			}
			w := serve(mux, http.MethodGet, "/match-requests?user_id=b", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.lastUserID, ShouldEqual, "b")

			var board types.RequestBoard
			So(json.Unmarshal(w.Body.Bytes(), &board), ShouldBeNil)
			So(board.Incoming, ShouldHaveLength, 1)
		})
	})
}

func TestSummaryHandler(t *testing.T) {
	Convey("Given the summary routes", t, func() {
		deps := &mockDependencies{summary: types.Summary{Profile: model.Profile{ID: "golfer-1"}, IncomingRequests: 2}}
		mux := newMux(deps)

		Convey("When reading a summary", func() {
			w := serve(mux, http.MethodGet, "/summary/golfer-1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"incoming_requests":2`)

			deps.summaryErr = service.ErrNotFound
			w = serve(mux, http.MethodGet, "/summary/ghost", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When reading the catalog", func() {
			w := serve(mux, http.MethodGet, "/catalog", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"skill_levels"`)
			So(w.Body.String(), ShouldContainSubstring, `"factors"`)
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("unexpected EOF")

		Convey("Then kinds and causes are both visible to errors.Is", func() {
			err := api.WrapKind("api.submit_profile", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.submit_profile: bad request: unexpected EOF")
		})

		Convey("And constructors cover kind-only and cause-only errors", func() {
			So(api.NewKind("op", api.ErrBackpressure).Error(), ShouldEqual, "op: ingestion queue is full")
			So(api.Wrap("op", cause).Error(), ShouldEqual, "op: unexpected EOF")
			So(api.Wrap("op", nil), ShouldBeNil)
		})
	})
}
