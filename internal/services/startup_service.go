package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/supabase"
)

type StartupService struct {
	store         Store
	subscriptions *SubscriptionService
	pages         Revalidator
	logger        zerolog.Logger
}

func NewStartupService(store Store, subscriptions *SubscriptionService, pages Revalidator, logger zerolog.Logger) *StartupService {
	return &StartupService{
		store:         store,
		subscriptions: subscriptions,
		pages:         pages,
		logger:        logger.With().Str("service", "StartupService").Logger(),
	}
}

// Create stores a new startup from the onboarding form. It starts out
// evaluating.
func (s *StartupService) Create(ctx context.Context, userID uuid.UUID, form schemas.OnboardingForm) (*models.Startup, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	form.Normalize()
	if err := schemas.Check(&form); err != nil {
		return nil, err
	}

	startup := &models.Startup{
		UserID:       userID,
		Idea:         form.Idea,
		TargetUsers:  nullString(form.TargetUsers),
		BusinessType: nullString(form.BusinessType),
		Geography:    nullString(form.Geography),
		FounderType:  nullString(form.FounderType),
		Status:       models.StatusEvaluating,
	}
	if err := s.store.CreateStartup(ctx, startup); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID.String()).Msg("Failed to create startup")
		return nil, ErrPersistence
	}

	if err := s.pages.Revalidate(ctx, "/dashboard"); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revalidate dashboard")
	}
	return startup, nil
}

func (s *StartupService) List(ctx context.Context, userID uuid.UUID) ([]models.Startup, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	startups, err := s.store.ListStartups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list startups: %w", err)
	}
	return startups, nil
}

func (s *StartupService) Get(ctx context.Context, userID, startupID uuid.UUID) (*models.Startup, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	startup, err := s.store.GetStartup(ctx, startupID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return startup, nil
}

// UpdateStatus stores any known status. Transitions are not checked.
func (s *StartupService) UpdateStatus(ctx context.Context, userID, startupID uuid.UUID, status models.StartupStatus) error {
	if userID == uuid.Nil {
		return ErrUnauthenticated
	}
	if !status.Valid() {
		return &schemas.ValidationError{Schema: "UpdateStatusRequest", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	if err := s.store.UpdateStartupStatus(ctx, startupID, userID, status); err != nil {
		if errors.Is(err, supabase.ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error().Err(err).Str("startup_id", startupID.String()).Msg("Failed to update status")
		return ErrPersistence
	}

	paths := []string{"/dashboard"}
	for _, st := range models.Stages {
		paths = append(paths, st.Path(startupID))
	}
	if err := s.pages.Revalidate(ctx, paths...); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revalidate pages")
	}
	return nil
}

// StageView is everything a stage page renders. Artifacts that have not been
// generated yet are nil. When Locked is set no artifacts are loaded.
type StageView struct {
	Startup *models.Startup
	Stage   models.Stage
	Premium bool
	Locked  bool

	Evaluation  *schemas.Evaluation
	Questions   *schemas.Questions
	Competitors *schemas.Competitors
	Analysis    *schemas.Analysis
	MVP         *schemas.MVPScope
	TechStack   *schemas.TechStack
	Roadmap     *schemas.Roadmap
	Tasks       []models.Task
	GTM         *schemas.GTMStrategy
	Costs       *schemas.Costs
	Metrics     *schemas.SuccessMetrics
}

// Empty reports whether none of the stage's artifacts exist yet.
func (v *StageView) Empty() bool {
	return v.Evaluation == nil && v.Questions == nil && v.Competitors == nil &&
		v.Analysis == nil && v.MVP == nil && v.TechStack == nil && v.Roadmap == nil &&
		len(v.Tasks) == 0 && v.GTM == nil && v.Costs == nil && v.Metrics == nil
}

// LoadStage fetches the startup, the caller's tier and then the stage's
// artifacts, each batch in parallel.
func (s *StartupService) LoadStage(ctx context.Context, userID, startupID uuid.UUID, stage models.Stage) (*StageView, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	view := &StageView{Stage: stage}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		startup, err := s.store.GetStartup(gctx, startupID, userID)
		if err != nil {
			return notFound(err)
		}
		view.Startup = startup
		return nil
	})
	g.Go(func() error {
		premium, err := s.subscriptions.IsPremium(gctx, userID)
		if err != nil {
			return err
		}
		view.Premium = premium
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if stage.Gated() && !view.Premium {
		view.Locked = true
		return view, nil
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, kind := range stage.Kinds() {
		kind := kind
		if kind == models.KindTasks {
			g.Go(func() error {
				tasks, err := s.store.ListTasks(gctx, startupID)
				if err != nil {
					return fmt.Errorf("failed to load tasks: %w", err)
				}
				view.Tasks = tasks
				return nil
			})
			continue
		}

		// Each goroutine writes a different field of view.
		g.Go(func() error {
			out, err := s.store.GetAIOutput(gctx, startupID, kind)
			if errors.Is(err, supabase.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to load %s: %w", kind, err)
			}
			view.set(kind, out.Payload, s.logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return view, nil
}

func (v *StageView) set(kind models.ArtifactKind, raw json.RawMessage, logger zerolog.Logger) {
	var err error
	switch kind {
	case models.KindEvaluation:
		v.Evaluation, err = decode[schemas.Evaluation](raw)
	case models.KindQuestions:
		v.Questions, err = decode[schemas.Questions](raw)
	case models.KindCompetitors:
		v.Competitors, err = decode[schemas.Competitors](raw)
	case models.KindAnalysis:
		v.Analysis, err = decode[schemas.Analysis](raw)
	case models.KindMVP:
		v.MVP, err = decode[schemas.MVPScope](raw)
	case models.KindTechStack:
		v.TechStack, err = decode[schemas.TechStack](raw)
	case models.KindRoadmap:
		v.Roadmap, err = decode[schemas.Roadmap](raw)
	case models.KindGTM:
		v.GTM, err = decode[schemas.GTMStrategy](raw)
	case models.KindCosts:
		v.Costs, err = decode[schemas.Costs](raw)
	case models.KindMetrics:
		v.Metrics, err = decode[schemas.SuccessMetrics](raw)
	}
	if err != nil {
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("Stored artifact no longer matches its schema")
	}
}

func decode[T any](raw json.RawMessage) (*T, error) {
	res := schemas.Parse[T](raw)
	if !res.OK {
		return nil, res.Err()
	}
	return &res.Value, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
