package http_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	deliveryhttp "github.com/gdugdh24/speeddate-backend/internal/delivery/http"
	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/handler"
	"github.com/gdugdh24/speeddate-backend/internal/delivery/http/middleware"
	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository/memory"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/auth"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/compatibility"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/matchchoice"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/rating"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/taste"
	"github.com/gdugdh24/speeddate-backend/internal/usecase/weights"
)

type api struct {
	engine *gin.Engine
	store  *memory.Store
	tokens *auth.TokenUseCase
	event  uuid.UUID
	man    uuid.UUID
	woman  uuid.UUID
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNop()
	store := memory.New()
	a := &api{store: store, event: uuid.New(), man: uuid.New(), woman: uuid.New()}

	country := "NL"
	store.PutEvent(&domain.Event{ID: a.event, Title: "Spring mixer", MatchingOpen: true})
	store.PutProfile(&domain.Profile{UserID: a.man, DisplayName: "Sam", Gender: domain.GenderMale, Country: &country, IsActive: true})
	store.PutProfile(&domain.Profile{UserID: a.woman, DisplayName: "Ana", Gender: domain.GenderFemale, Country: &country, IsActive: true})
	store.Register(a.event, a.man, domain.RegistrationAttended)
	store.Register(a.event, a.woman, domain.RegistrationAttended)

	opts := compatibility.DefaultOptions()
	opts.ChunkSize = 1
	opts.ChunkRetryBackoff = 0

	weightsUC := weights.NewWeightsUseCase(store.WeightRepository(), store.ScoreRepository(), domain.DefaultMatchWeights(), log)
	compatUC := compatibility.NewCompatibilityUseCase(
		store.ProfileRepository(),
		store.AssessmentRepository(),
		store.DealbreakerRepository(),
		store.RatingRepository(),
		store.TasteVectorRepository(),
		store.ScoreRepository(),
		weightsUC,
		nil,
		opts,
		log,
	)
	learnerUC := taste.NewLearnerUseCase(store.RatingRepository(), store.ProfileRepository(), store.AssessmentRepository(),
		store.TasteVectorRepository(), store.ScoreRepository(), log)
	ratingUC := rating.NewRatingUseCase(store.EventRepository(), store.RatingRepository(), store.ScoreRepository(), log)
	choiceUC := matchchoice.NewMatchChoiceUseCase(store.EventRepository(), store.MatchChoiceRepository(),
		store.MatchResultRepository(), store.PrivacyRepository(), store.SubscriptionRepository(), log)

	a.tokens = auth.NewTokenUseCase("0123456789abcdef0123456789abcdef", 60)
	router := deliveryhttp.NewRouter(
		handler.NewAuthHandler(),
		handler.NewRatingHandler(ratingUC),
		handler.NewChoiceHandler(choiceUC),
		handler.NewCompatibilityHandler(compatUC),
		handler.NewAdminHandler(compatUC, learnerUC, weightsUC, choiceUC),
		middleware.NewAuthMiddleware(a.tokens),
	)
	a.engine = router.Setup()
	return a
}

func (a *api) token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	tok, _, err := a.tokens.Issue(userID, role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func (a *api) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

func TestRouter_AuthBoundaries(t *testing.T) {
	a := newAPI(t)
	member := a.token(t, a.man, auth.RoleMember)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"health is public", http.MethodGet, "/health", "", http.StatusOK},
		{"missing token", http.MethodGet, "/api/v1/compatibility", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/compatibility", "not-a-jwt", http.StatusUnauthorized},
		{"member on admin route", http.MethodGet, "/api/v1/admin/weights", member, http.StatusForbidden},
		{"admin on admin route", http.MethodGet, "/api/v1/admin/weights", a.token(t, uuid.New(), auth.RoleAdmin), http.StatusOK},
		{"me", http.MethodGet, "/api/v1/auth/me", member, http.StatusOK},
	}
	for _, tt := range tests {
		rec := a.do(tt.method, tt.path, tt.token, "")
		if rec.Code != tt.want {
			t.Fatalf("%s: status %d, want %d (%s)", tt.name, rec.Code, tt.want, rec.Body.String())
		}
	}
}

func TestRouter_SubmitRating(t *testing.T) {
	a := newAPI(t)
	tok := a.token(t, a.man, auth.RoleMember)
	path := "/api/v1/events/" + a.event.String() + "/ratings"
	body := `{"to_user_id":"` + a.woman.String() + `","would_meet_again":true,"conversation_quality":5,` +
		`"long_term_potential":4,"physical_chemistry":4,"comfort_level":5,"values_alignment":3,"energy_compatibility":4}`

	if rec := a.do(http.MethodPost, path, tok, `{"to_user_id":"`+a.woman.String()+`","stars":5}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field accepted: %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, path, tok, body); rec.Code != http.StatusCreated {
		t.Fatalf("rating: %d %s", rec.Code, rec.Body.String())
	}
	if rec := a.do(http.MethodPost, path, tok, body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate rating: %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/api/v1/events/not-a-uuid/ratings", tok, body); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad event id: %d", rec.Code)
	}
}

func TestRouter_ChoiceLifecycle(t *testing.T) {
	a := newAPI(t)
	manTok := a.token(t, a.man, auth.RoleMember)
	womanTok := a.token(t, a.woman, auth.RoleMember)
	base := "/api/v1/events/" + a.event.String()

	rec := a.do(http.MethodPost, base+"/choices", manTok, `{"choices":[]}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("incomplete submission: %d", rec.Code)
	}
	var rejection handler.RejectionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &rejection); err != nil {
		t.Fatalf("decode rejection: %v", err)
	}
	if rejection.Reason != domain.ReasonIncompleteSubmission {
		t.Fatalf("reason %q", rejection.Reason)
	}

	submit := func(tok string, candidate uuid.UUID, choice string) int {
		return a.do(http.MethodPost, base+"/choices", tok,
			`{"choices":[{"candidate_id":"`+candidate.String()+`","choice":"`+choice+`"}]}`).Code
	}
	if code := submit(manTok, a.woman, "date"); code != http.StatusCreated {
		t.Fatalf("man submit: %d", code)
	}
	if code := submit(manTok, a.woman, "no"); code != http.StatusConflict {
		t.Fatalf("second submit: %d", code)
	}
	if code := submit(womanTok, a.man, "date"); code != http.StatusCreated {
		t.Fatalf("woman submit: %d", code)
	}

	rec = a.do(http.MethodGet, base+"/results", manTok, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("results: %d", rec.Code)
	}
	var page matchchoice.MatchResults
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode results: %v", err)
	}
	if len(page.Matches) != 1 || page.Matches[0].ResultType != domain.ResultMutualDate {
		t.Fatalf("unexpected results %+v", page)
	}

	if rec := a.do(http.MethodGet, base+"/vip-bonus", manTok, ""); rec.Code != http.StatusPaymentRequired {
		t.Fatalf("vip-bonus without subscription: %d", rec.Code)
	}
	a.store.SetVIP(a.man, true)
	if rec := a.do(http.MethodGet, base+"/vip-bonus", manTok, ""); rec.Code != http.StatusOK {
		t.Fatalf("vip-bonus: %d", rec.Code)
	}
}

func TestRouter_AdminRecalculateAndWeights(t *testing.T) {
	a := newAPI(t)
	admin := a.token(t, uuid.New(), auth.RoleAdmin)
	member := a.token(t, a.man, auth.RoleMember)

	if rec := a.do(http.MethodGet, "/api/v1/compatibility/"+a.woman.String(), member, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("uncomputed pair should be 404, got %d", rec.Code)
	}

	if rec := a.do(http.MethodPost, "/api/v1/admin/recalculate", admin, `{"all":true,"user_id":"`+a.man.String()+`"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("ambiguous target accepted: %d", rec.Code)
	}
	rec := a.do(http.MethodPost, "/api/v1/admin/recalculate", admin, `{"all":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("recalculate: %d %s", rec.Code, rec.Body.String())
	}
	var count handler.CountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil || count.Count != 1 {
		t.Fatalf("expected one pair, got %+v (%v)", count, err)
	}

	rec = a.do(http.MethodGet, "/api/v1/compatibility/"+a.woman.String(), member, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("computed pair: %d", rec.Code)
	}
	var view compatibility.ScoreView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode score: %v", err)
	}
	if view.UserID != a.woman {
		t.Fatalf("view should point at the other member, got %s", view.UserID)
	}

	bad := `{"life_alignment":0.6,"psychological":0.1,"chemistry":0.1,"taste_learning":0.1,"profile_completeness":0.1}`
	if rec := a.do(http.MethodPut, "/api/v1/admin/weights", admin, bad); rec.Code != http.StatusBadRequest {
		t.Fatalf("invalid weights accepted: %d", rec.Code)
	}
	good := `{"life_alignment":0.4,"psychological":0.2,"chemistry":0.2,"taste_learning":0.1,"profile_completeness":0.1}`
	if rec := a.do(http.MethodPut, "/api/v1/admin/weights", admin, good); rec.Code != http.StatusOK {
		t.Fatalf("update weights: %d %s", rec.Code, rec.Body.String())
	}
	if len(a.store.Scores()) != 0 {
		t.Fatalf("weight change should clear the cache")
	}

	if rec := a.do(http.MethodPost, "/api/v1/admin/events/"+a.event.String()+"/resolve", admin, ""); rec.Code != http.StatusOK {
		t.Fatalf("resolve: %d", rec.Code)
	}
	if rec := a.do(http.MethodPost, "/api/v1/admin/taste/learn", admin, ""); rec.Code != http.StatusOK {
		t.Fatalf("learn: %d", rec.Code)
	}
}

func TestRouter_RecalculateReportsPartialCount(t *testing.T) {
	a := newAPI(t)
	admin := a.token(t, uuid.New(), auth.RoleAdmin)

	country := "NL"
	other := uuid.New()
	a.store.PutProfile(&domain.Profile{UserID: other, DisplayName: "Tom", Gender: domain.GenderMale, Country: &country, IsActive: true})
	a.store.UpsertHook = func(batch []*domain.CompatibilityScore) error {
		for _, sc := range batch {
			if _, ok := sc.Key().SlotOf(other); ok {
				return errors.New("down")
			}
		}
		return nil
	}

	rec := a.do(http.MethodPost, "/api/v1/admin/recalculate", admin, `{"user_id":"`+a.woman.String()+`"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("partial run: status %d", rec.Code)
	}
	var count handler.CountResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &count); err != nil {
		t.Fatalf("decode count: %v", err)
	}
	if count.Count != 1 || count.Error == "" {
		t.Fatalf("partial run should report the committed pair and an error, got %+v", count)
	}
	if len(a.store.Scores()) != 1 {
		t.Fatalf("committed pair missing from cache")
	}
}
