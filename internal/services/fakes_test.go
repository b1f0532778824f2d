package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"startup-os-backend/internal/llm"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/prompts"
	"startup-os-backend/internal/services"
	"startup-os-backend/internal/supabase"
)

var fixtures = map[models.ArtifactKind]string{
	models.KindEvaluation:  `{"score":72,"verdict":"refine","summary":"s","strengths":["a"],"weaknesses":["b"],"risks":[]}`,
	models.KindQuestions:   `{"questions":[{"question":"q","purpose":"p"}]}`,
	models.KindCompetitors: `{"competitors":[{"name":"n","description":"d","strengths":[],"weaknesses":[]}],"marketSaturation":"medium"}`,
	models.KindAnalysis:    `{"positioning":"p","differentiators":["d"]}`,
	models.KindMVP:         `{"summary":"s","features":[{"id":"f1","name":"n","description":"d","priority":"must","effort":"small"}]}`,
	models.KindTechStack:   `{"items":[{"category":"frontend","choice":"Next.js","reason":"r"}],"rationale":"r"}`,
	models.KindRoadmap:     `{"phases":[{"name":"p","durationWeeks":2,"goals":["g"]}],"totalWeeks":2}`,
	models.KindTasks:       `{"tasks":[{"id":"1","title":"Landing page","description":"d","status":"backlog","estimateHours":4,"skillTag":"frontend"},{"id":"2","title":"Pricing","description":"d","status":"backlog","estimateHours":0,"skillTag":"business"}]}`,
	models.KindGTM:         `{"targetAudience":"a","positioning":"p","pricingStrategy":"freemium","channels":[{"name":"seo","tactic":"t","priority":"high"}],"launchSteps":["s"]}`,
	models.KindCosts:       `{"currency":"USD","monthly":[{"item":"hosting","category":"infrastructure","amount":20}],"totalMonthly":20}`,
	models.KindMetrics:     `{"northStar":{"name":"wau","target":"100","frequency":"weekly","category":"retention"},"metrics":[{"name":"signups","target":"50","frequency":"weekly","category":"acquisition"}]}`,
}

// fakeCompleter answers each kind with its fixture unless told to fail. It
// recognizes the kind by the shape the prompt library attaches.
type fakeCompleter struct {
	mu      sync.Mutex
	byShape map[string]models.ArtifactKind
	fail    map[models.ArtifactKind]error
	bad     map[models.ArtifactKind]string
	calls   []models.ArtifactKind
	prompts map[models.ArtifactKind]string
}

func newFakeCompleter(t *testing.T, lib *prompts.Library) *fakeCompleter {
	t.Helper()
	f := &fakeCompleter{
		byShape: map[string]models.ArtifactKind{},
		fail:    map[models.ArtifactKind]error{},
		bad:     map[models.ArtifactKind]string{},
		prompts: map[models.ArtifactKind]string{},
	}
	for kind := range fixtures {
		req, err := lib.Build(kind, prompts.NewInput(&models.Startup{Idea: "x"}))
		require.NoError(t, err)
		f.byShape[req.Shape] = kind
	}
	return f
}

func (f *fakeCompleter) Model() string { return "fake-model" }

func (f *fakeCompleter) CompleteJSON(ctx context.Context, req llm.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	kind, ok := f.byShape[req.Shape]
	if !ok {
		return nil, errors.New("unexpected prompt")
	}
	f.calls = append(f.calls, kind)
	f.prompts[kind] = req.Prompt

	if err := f.fail[kind]; err != nil {
		return nil, err
	}
	if raw, ok := f.bad[kind]; ok {
		return []byte(raw), nil
	}
	return []byte(fixtures[kind]), nil
}

func (f *fakeCompleter) called(kind models.ArtifactKind) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range f.calls {
		if k == kind {
			return true
		}
	}
	return false
}

type outputKey struct {
	startupID uuid.UUID
	kind      models.ArtifactKind
}

// memStore is an in-memory services.Store.
type memStore struct {
	mu       sync.Mutex
	startups map[uuid.UUID]*models.Startup
	outputs  map[outputKey]*models.AIOutput
	tasks    map[uuid.UUID][]models.Task
	profiles map[uuid.UUID]*models.Profile

	failUpsert  error
	failProfile error
	failList    error
}

func newMemStore() *memStore {
	return &memStore{
		startups: map[uuid.UUID]*models.Startup{},
		outputs:  map[outputKey]*models.AIOutput{},
		tasks:    map[uuid.UUID][]models.Task{},
		profiles: map[uuid.UUID]*models.Profile{},
	}
}

func (m *memStore) addStartup(userID uuid.UUID) *models.Startup {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := &models.Startup{ID: uuid.New(), UserID: userID, Idea: "Shared booking for community kitchens", Status: models.StatusEvaluating}
	m.startups[s.ID] = s
	return s
}

func (m *memStore) CreateStartup(ctx context.Context, s *models.Startup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	cp := *s
	m.startups[s.ID] = &cp
	return nil
}

func (m *memStore) GetStartup(ctx context.Context, startupID, userID uuid.UUID) (*models.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.startups[startupID]
	if !ok || s.UserID != userID {
		return nil, supabase.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) ListStartups(ctx context.Context, userID uuid.UUID) ([]models.Startup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Startup
	for _, s := range m.startups {
		if s.UserID == userID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *memStore) UpdateStartupStatus(ctx context.Context, startupID, userID uuid.UUID, status models.StartupStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.startups[startupID]
	if !ok || s.UserID != userID {
		return supabase.ErrNotFound
	}
	s.Status = status
	return nil
}

func (m *memStore) UpsertAIOutput(ctx context.Context, out *models.AIOutput) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpsert != nil {
		return m.failUpsert
	}
	cp := *out
	cp.UpdatedAt = time.Now()
	m.outputs[outputKey{out.StartupID, out.Kind}] = &cp
	return nil
}

func (m *memStore) GetAIOutput(ctx context.Context, startupID uuid.UUID, kind models.ArtifactKind) (*models.AIOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out, ok := m.outputs[outputKey{startupID, kind}]
	if !ok {
		return nil, supabase.ErrNotFound
	}
	return out, nil
}

func (m *memStore) ListAIOutputs(ctx context.Context, startupID uuid.UUID) ([]models.AIOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failList != nil {
		return nil, m.failList
	}
	var outs []models.AIOutput
	for k, out := range m.outputs {
		if k.startupID == startupID {
			outs = append(outs, *out)
		}
	}
	return outs, nil
}

func (m *memStore) ReplaceTasks(ctx context.Context, startupID uuid.UUID, tasks []models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := make([]models.Task, len(tasks))
	for i, t := range tasks {
		t.ID = uuid.New()
		t.StartupID = startupID
		t.Position = i
		stored[i] = t
	}
	m.tasks[startupID] = stored
	return nil
}

func (m *memStore) ListTasks(ctx context.Context, startupID uuid.UUID) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Task(nil), m.tasks[startupID]...), nil
}

func (m *memStore) UpdateTask(ctx context.Context, startupID, taskID uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks[startupID] {
		t := &m.tasks[startupID][i]
		if t.ID != taskID {
			continue
		}
		if patch.Title != nil {
			t.Title = *patch.Title
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.EstimateHours != nil {
			t.EstimateHours = *patch.EstimateHours
		}
		if patch.SkillTag != nil {
			t.SkillTag = *patch.SkillTag
		}
		if patch.Position != nil {
			t.Position = *patch.Position
		}
		cp := *t
		return &cp, nil
	}
	return nil, supabase.ErrNotFound
}

func (m *memStore) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile != nil {
		return nil, m.failProfile
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, supabase.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) UpdateSubscription(ctx context.Context, userID uuid.UUID, tier models.SubscriptionTier, startedAt, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile != nil {
		return m.failProfile
	}
	p := &models.Profile{ID: userID, SubscriptionTier: tier}
	p.SubscriptionStartedAt.Time, p.SubscriptionStartedAt.Valid = startedAt, true
	p.SubscriptionExpiresAt.Time, p.SubscriptionExpiresAt.Valid = expiresAt, true
	m.profiles[userID] = p
	return nil
}

func (m *memStore) EndSubscription(ctx context.Context, userID uuid.UUID, endedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failProfile != nil {
		return m.failProfile
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = &models.Profile{ID: userID}
		m.profiles[userID] = p
	}
	p.SubscriptionTier = models.TierFreemium
	p.SubscriptionExpiresAt.Time, p.SubscriptionExpiresAt.Valid = endedAt, true
	return nil
}

func (m *memStore) makePremium(userID uuid.UUID) {
	_ = m.UpdateSubscription(context.Background(), userID, models.TierPremium, time.Now(), time.Now().Add(24*time.Hour))
}

// recordingPages remembers every revalidated path.
type recordingPages struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingPages) Revalidate(ctx context.Context, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, paths...)
	return nil
}

func (r *recordingPages) has(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == path {
			return true
		}
	}
	return false
}

type harness struct {
	store        *memStore
	llm          *fakeCompleter
	pages        *recordingPages
	subs         *services.SubscriptionService
	gen          *services.GenerationService
	orchestrator *services.OrchestrationService
	startups     *services.StartupService
	tasks        *services.TaskService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	lib, err := prompts.Load()
	require.NoError(t, err)

	h := &harness{
		store: newMemStore(),
		llm:   newFakeCompleter(t, lib),
		pages: &recordingPages{},
	}
	logger := zerolog.Nop()
	h.subs = services.NewSubscriptionService(h.store, h.pages, logger)
	h.gen = services.NewGenerationService(h.store, h.llm, lib, h.pages, h.subs, logger)
	h.orchestrator = services.NewOrchestrationService(h.gen, h.store, h.pages, h.subs, logger)
	h.startups = services.NewStartupService(h.store, h.subs, h.pages, logger)
	h.tasks = services.NewTaskService(h.store, h.pages, logger)
	return h
}
