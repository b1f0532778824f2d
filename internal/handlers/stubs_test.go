package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"startup-os-backend/internal/middleware"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/services"
	"startup-os-backend/internal/supabase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asUser authenticates every request as userID.
func asUser(userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID.String())
		c.Next()
	}
}

func newRouter(userID uuid.UUID) *gin.Engine {
	router := gin.New()
	if userID != uuid.Nil {
		router.Use(asUser(userID))
	}
	return router
}

func doJSON(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doForm(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type stubAuth struct {
	session    *supabase.Session
	err        error
	gotCode    string
	gotVerify  string
	signedOut  string
	signOutErr error
}

func (s *stubAuth) ExchangeCode(ctx context.Context, code, verifier string) (*supabase.Session, error) {
	s.gotCode, s.gotVerify = code, verifier
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubAuth) SignOut(ctx context.Context, token string) error {
	s.signedOut = token
	return s.signOutErr
}

type stubStartups struct {
	startups map[uuid.UUID]*models.Startup
	owner    uuid.UUID
	view     *services.StageView
	created  *schemas.OnboardingForm
	status   models.StartupStatus
	listErr  error
}

func newStubStartups(owner uuid.UUID) *stubStartups {
	return &stubStartups{owner: owner, startups: map[uuid.UUID]*models.Startup{}}
}

func (s *stubStartups) add() *models.Startup {
	st := &models.Startup{ID: uuid.New(), UserID: s.owner, Idea: "Meal planning for shift workers", Status: models.StatusEvaluating, CreatedAt: time.Now()}
	s.startups[st.ID] = st
	return st
}

func (s *stubStartups) get(userID, id uuid.UUID) (*models.Startup, error) {
	st, ok := s.startups[id]
	if !ok || userID != s.owner {
		return nil, services.ErrNotFound
	}
	return st, nil
}

func (s *stubStartups) Create(ctx context.Context, userID uuid.UUID, form schemas.OnboardingForm) (*models.Startup, error) {
	form.Normalize()
	if err := schemas.Check(&form); err != nil {
		return nil, err
	}
	s.created = &form
	st := s.add()
	st.Idea = form.Idea
	return st, nil
}

func (s *stubStartups) List(ctx context.Context, userID uuid.UUID) ([]models.Startup, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	var out []models.Startup
	if userID == s.owner {
		for _, st := range s.startups {
			out = append(out, *st)
		}
	}
	return out, nil
}

func (s *stubStartups) Get(ctx context.Context, userID, startupID uuid.UUID) (*models.Startup, error) {
	return s.get(userID, startupID)
}

func (s *stubStartups) UpdateStatus(ctx context.Context, userID, startupID uuid.UUID, status models.StartupStatus) error {
	if _, err := s.get(userID, startupID); err != nil {
		return err
	}
	s.status = status
	return nil
}

func (s *stubStartups) LoadStage(ctx context.Context, userID, startupID uuid.UUID, stage models.Stage) (*services.StageView, error) {
	st, err := s.get(userID, startupID)
	if err != nil {
		return nil, err
	}
	if s.view != nil {
		v := *s.view
		v.Startup, v.Stage = st, stage
		return &v, nil
	}
	return &services.StageView{Startup: st, Stage: stage, Locked: stage.Gated()}, nil
}

type stubSubs struct {
	profile *models.Profile
	promo   string
	err     error
	now     time.Time
}

func (s *stubSubs) Now() time.Time {
	if s.now.IsZero() {
		return time.Now()
	}
	return s.now
}

func (s *stubSubs) Status(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if s.profile == nil {
		return models.FreemiumProfile(userID), nil
	}
	return s.profile, nil
}

func (s *stubSubs) UpgradeToPremium(ctx context.Context, userID uuid.UUID, promo string) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.promo = promo
	s.profile = &models.Profile{ID: userID, SubscriptionTier: models.TierPremium}
	s.profile.SubscriptionExpiresAt.Time = s.Now().Add(services.PremiumPeriod(promo))
	s.profile.SubscriptionExpiresAt.Valid = true
	return s.profile, nil
}

func (s *stubSubs) DowngradeToFreemium(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.profile = models.FreemiumProfile(userID)
	return s.profile, nil
}

type stubOrchestrator struct {
	result models.ActionResult
	err    error
	calls  []string
}

func (s *stubOrchestrator) do(name string) (models.ActionResult, error) {
	s.calls = append(s.calls, name)
	return s.result, s.err
}

func (s *stubOrchestrator) Evaluate(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	return s.do("evaluate")
}

func (s *stubOrchestrator) MarketReality(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	return s.do("market-reality")
}

func (s *stubOrchestrator) BuildPlan(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	return s.do("build-plan")
}

func (s *stubOrchestrator) LaunchPlan(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	return s.do("launch-plan")
}

type stubGenerator struct {
	value any
	err   error
}

func (s *stubGenerator) Generate(ctx context.Context, userID, startupID uuid.UUID, kind models.ArtifactKind) (any, error) {
	return s.value, s.err
}

type stubExporter struct {
	resp *models.ExportResponse
	err  error
}

func (s *stubExporter) Export(ctx context.Context, userID, startupID uuid.UUID) (*models.ExportResponse, error) {
	return s.resp, s.err
}

type stubTasks struct {
	task *models.Task
	err  error
	req  models.UpdateTaskRequest
}

func (s *stubTasks) List(ctx context.Context, userID, startupID uuid.UUID) ([]models.Task, error) {
	if s.task == nil {
		return nil, s.err
	}
	return []models.Task{*s.task}, s.err
}

func (s *stubTasks) Update(ctx context.Context, userID, startupID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	s.req = req
	return s.task, s.err
}
