package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
)

// OrchestrationService chains generations into the multi-step actions behind
// each stage's main button.
type OrchestrationService struct {
	gen     *GenerationService
	store   StartupStore
	pages   Revalidator
	premium PremiumChecker
	logger  zerolog.Logger
}

func NewOrchestrationService(gen *GenerationService, store StartupStore, pages Revalidator, premium PremiumChecker, logger zerolog.Logger) *OrchestrationService {
	return &OrchestrationService{
		gen:     gen,
		store:   store,
		pages:   pages,
		premium: premium,
		logger:  logger.With().Str("service", "OrchestrationService").Logger(),
	}
}

// load returns the caller's startup, checking premium when gated is set.
// Errors here are returned directly; failures inside the pipeline are
// reported through the ActionResult instead.
func (s *OrchestrationService) load(ctx context.Context, userID, startupID uuid.UUID, gated bool) (*models.Startup, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	startup, err := s.store.GetStartup(ctx, startupID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if gated {
		if err := s.premium.RequirePremium(ctx, userID); err != nil {
			return nil, err
		}
	}
	return startup, nil
}

func (s *OrchestrationService) setStatus(startup *models.Startup, status models.StartupStatus) Step {
	return Step{Name: "status", Run: func(ctx context.Context) error {
		if err := s.store.UpdateStartupStatus(ctx, startup.ID, startup.UserID, status); err != nil {
			s.logger.Error().Err(err).Str("startup_id", startup.ID.String()).Msg("Failed to update status")
			return ErrPersistence
		}
		startup.Status = status
		if err := s.pages.Revalidate(ctx, "/dashboard", models.StageValidation.Path(startup.ID)); err != nil {
			s.logger.Warn().Err(err).Msg("Failed to revalidate dashboard")
		}
		return nil
	}}
}

// Evaluate scores the idea and then drafts validation questions from the
// evaluation.
func (s *OrchestrationService) Evaluate(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	startup, err := s.load(ctx, userID, startupID, false)
	if err != nil {
		return models.ActionResult{}, err
	}

	var eval *schemas.Evaluation
	res := NewPipeline(
		Step{Name: string(models.KindEvaluation), Run: func(ctx context.Context) (err error) {
			eval, err = s.gen.GenerateEvaluation(ctx, startup)
			return err
		}},
		Step{Name: string(models.KindQuestions), Run: func(ctx context.Context) error {
			_, err := s.gen.GenerateQuestions(ctx, startup, eval)
			return err
		}},
		s.setStatus(startup, models.StatusEvaluated),
	).Run(ctx)

	return s.result("evaluate", startup, res), nil
}

// BuildPlan runs MVP scope, tech stack, roadmap and tasks in order, each fed
// by the ones before it.
func (s *OrchestrationService) BuildPlan(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	startup, err := s.load(ctx, userID, startupID, true)
	if err != nil {
		return models.ActionResult{}, err
	}

	prior, err := s.gen.loadArtifacts(ctx, startup.ID)
	if err != nil {
		return models.ActionResult{}, err
	}

	var (
		mvp     *schemas.MVPScope
		stack   *schemas.TechStack
		roadmap *schemas.Roadmap
	)
	res := NewPipeline(
		Step{Name: string(models.KindMVP), Run: func(ctx context.Context) (err error) {
			mvp, err = s.gen.GenerateMVP(ctx, startup, artifact[schemas.Evaluation](prior, models.KindEvaluation))
			return err
		}},
		Step{Name: string(models.KindTechStack), Run: func(ctx context.Context) (err error) {
			stack, err = s.gen.GenerateTechStack(ctx, startup, mvp)
			return err
		}},
		Step{Name: string(models.KindRoadmap), Run: func(ctx context.Context) (err error) {
			roadmap, err = s.gen.GenerateRoadmap(ctx, startup, mvp, stack)
			return err
		}},
		Step{Name: string(models.KindTasks), Run: func(ctx context.Context) error {
			_, err := s.gen.GenerateTasks(ctx, startup, roadmap)
			return err
		}},
		s.setStatus(startup, models.StatusInProgress),
	).Run(ctx)

	return s.result("build-plan", startup, res), nil
}

// LaunchPlan runs go-to-market, costs and success metrics in order.
func (s *OrchestrationService) LaunchPlan(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	startup, err := s.load(ctx, userID, startupID, true)
	if err != nil {
		return models.ActionResult{}, err
	}

	prior, err := s.gen.loadArtifacts(ctx, startup.ID)
	if err != nil {
		return models.ActionResult{}, err
	}

	var (
		gtm   *schemas.GTMStrategy
		costs *schemas.Costs
	)
	res := NewPipeline(
		Step{Name: string(models.KindGTM), Run: func(ctx context.Context) (err error) {
			gtm, err = s.gen.GenerateGTM(ctx, startup, artifact[schemas.MVPScope](prior, models.KindMVP))
			return err
		}},
		Step{Name: string(models.KindCosts), Run: func(ctx context.Context) (err error) {
			costs, err = s.gen.GenerateCosts(ctx, startup, gtm, artifact[schemas.TechStack](prior, models.KindTechStack))
			return err
		}},
		Step{Name: string(models.KindMetrics), Run: func(ctx context.Context) error {
			_, err := s.gen.GenerateMetrics(ctx, startup, gtm, costs)
			return err
		}},
	).Run(ctx)

	return s.result("launch-plan", startup, res), nil
}

// MarketReality generates competitors and the differentiation analysis at
// the same time. It succeeds if at least one of them does.
func (s *OrchestrationService) MarketReality(ctx context.Context, userID, startupID uuid.UUID) (models.ActionResult, error) {
	startup, err := s.load(ctx, userID, startupID, false)
	if err != nil {
		return models.ActionResult{}, err
	}

	// Both run at once, so the analysis only sees competitors from an
	// earlier run.
	prior, err := s.gen.loadArtifacts(ctx, startup.ID)
	if err != nil {
		return models.ActionResult{}, err
	}

	outcomes := RunSettled(ctx,
		Step{Name: string(models.KindCompetitors), Run: func(ctx context.Context) error {
			_, err := s.gen.GenerateCompetitors(ctx, startup)
			return err
		}},
		Step{Name: string(models.KindAnalysis), Run: func(ctx context.Context) error {
			_, err := s.gen.GenerateAnalysis(ctx, startup, artifact[schemas.Competitors](prior, models.KindCompetitors))
			return err
		}},
	)

	result := models.ActionResult{}
	var failures []string
	for _, o := range outcomes {
		if o.Err != nil {
			s.logger.Warn().Err(o.Err).
				Str("startup_id", startup.ID.String()).
				Str("step", o.Name).
				Msg("market-reality step failed")
			failures = append(failures, publicMessage(o.Err))
			if result.FailedStep == "" {
				result.FailedStep = o.Name
			}
			continue
		}
		result.Completed = append(result.Completed, o.Name)
	}

	result.Success = len(result.Completed) > 0
	if !result.Success {
		result.Error = strings.Join(failures, "; ")
	}
	return result, nil
}

func (s *OrchestrationService) result(action string, startup *models.Startup, res PipelineResult) models.ActionResult {
	if res.OK() {
		s.logger.Info().Str("action", action).Str("startup_id", startup.ID.String()).Strs("steps", res.Completed).Msg("Action completed")
		return models.ActionResult{Success: true, Completed: res.Completed}
	}

	s.logger.Warn().Err(res.Err).
		Str("action", action).
		Str("startup_id", startup.ID.String()).
		Str("failed_step", res.FailedStep).
		Msg("Action failed")

	return models.ActionResult{
		Success:    false,
		Error:      publicMessage(res.Err),
		Completed:  res.Completed,
		FailedStep: res.FailedStep,
	}
}
