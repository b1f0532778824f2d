package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"startup-os-backend/internal/llm"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/prompts"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/supabase"
)

// GenerationService turns a startup and its earlier artifacts into a new
// artifact: prompt, completion, validation, upsert, page revalidation.
type GenerationService struct {
	store   Store
	llm     llm.Completer
	prompts *prompts.Library
	pages   Revalidator
	premium PremiumChecker
	logger  zerolog.Logger
}

// PremiumChecker is satisfied by *SubscriptionService.
type PremiumChecker interface {
	RequirePremium(ctx context.Context, userID uuid.UUID) error
}

func NewGenerationService(
	store Store,
	completer llm.Completer,
	library *prompts.Library,
	pages Revalidator,
	premium PremiumChecker,
	logger zerolog.Logger,
) *GenerationService {
	return &GenerationService{
		store:   store,
		llm:     completer,
		prompts: library,
		pages:   pages,
		premium: premium,
		logger:  logger.With().Str("service", "GenerationService").Logger(),
	}
}

// generate runs one artifact generation and returns the validated value.
func generate[T any](ctx context.Context, s *GenerationService, startup *models.Startup, kind models.ArtifactKind, in *prompts.Input) (*T, error) {
	log := s.logger.With().Str("startup_id", startup.ID.String()).Str("kind", string(kind)).Logger()

	req, err := s.prompts.Build(kind, in)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := s.llm.CompleteJSON(ctx, req)
	if err != nil {
		log.Warn().Err(err).Msg("Completion failed")
		return nil, fmt.Errorf("%s %w: %w", kind, ErrGenerationFailed, err)
	}

	res := schemas.Parse[T](raw)
	if !res.OK {
		log.Warn().Str("reason", res.Reason).Msg("Completion did not match schema")
		return nil, fmt.Errorf("%s %w: %w", kind, ErrGenerationFailed, res.Err())
	}
	log.Debug().Dur("latency", time.Since(start)).Msg("Generated artifact")

	if kind == models.KindTasks {
		return &res.Value, nil
	}

	payload, err := json.Marshal(res.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	out := &models.AIOutput{StartupID: startup.ID, Kind: kind, Payload: payload, Model: s.llm.Model()}
	if err := s.store.UpsertAIOutput(ctx, out); err != nil {
		log.Error().Err(err).Msg("Failed to store artifact")
		return nil, ErrPersistence
	}

	s.revalidate(ctx, startup.ID, kind)
	return &res.Value, nil
}

func (s *GenerationService) revalidate(ctx context.Context, startupID uuid.UUID, kind models.ArtifactKind) {
	var paths []string
	for _, st := range models.StagesShowing(kind) {
		paths = append(paths, st.Path(startupID))
	}
	if len(paths) == 0 {
		return
	}
	if err := s.pages.Revalidate(ctx, paths...); err != nil {
		s.logger.Warn().Err(err).Strs("paths", paths).Msg("Failed to revalidate pages")
	}
}

func (s *GenerationService) GenerateEvaluation(ctx context.Context, startup *models.Startup) (*schemas.Evaluation, error) {
	return generate[schemas.Evaluation](ctx, s, startup, models.KindEvaluation, prompts.NewInput(startup))
}

func (s *GenerationService) GenerateQuestions(ctx context.Context, startup *models.Startup, eval *schemas.Evaluation) (*schemas.Questions, error) {
	in := prompts.NewInput(startup).With("Evaluation", eval)
	return generate[schemas.Questions](ctx, s, startup, models.KindQuestions, in)
}

func (s *GenerationService) GenerateCompetitors(ctx context.Context, startup *models.Startup) (*schemas.Competitors, error) {
	return generate[schemas.Competitors](ctx, s, startup, models.KindCompetitors, prompts.NewInput(startup))
}

func (s *GenerationService) GenerateAnalysis(ctx context.Context, startup *models.Startup, competitors *schemas.Competitors) (*schemas.Analysis, error) {
	in := prompts.NewInput(startup).With("Competitors", competitors)
	return generate[schemas.Analysis](ctx, s, startup, models.KindAnalysis, in)
}

func (s *GenerationService) GenerateMVP(ctx context.Context, startup *models.Startup, eval *schemas.Evaluation) (*schemas.MVPScope, error) {
	in := prompts.NewInput(startup).With("Evaluation", eval)
	return generate[schemas.MVPScope](ctx, s, startup, models.KindMVP, in)
}

func (s *GenerationService) GenerateTechStack(ctx context.Context, startup *models.Startup, mvp *schemas.MVPScope) (*schemas.TechStack, error) {
	in := prompts.NewInput(startup).With("MVP scope", mvp)
	return generate[schemas.TechStack](ctx, s, startup, models.KindTechStack, in)
}

func (s *GenerationService) GenerateRoadmap(ctx context.Context, startup *models.Startup, mvp *schemas.MVPScope, stack *schemas.TechStack) (*schemas.Roadmap, error) {
	in := prompts.NewInput(startup).With("MVP scope", mvp).With("Tech stack", stack)
	return generate[schemas.Roadmap](ctx, s, startup, models.KindRoadmap, in)
}

// GenerateTasks replaces the startup's task list with tasks derived from the
// roadmap.
func (s *GenerationService) GenerateTasks(ctx context.Context, startup *models.Startup, roadmap *schemas.Roadmap) ([]models.Task, error) {
	in := prompts.NewInput(startup).With("Roadmap", roadmap)
	plan, err := generate[schemas.TaskPlan](ctx, s, startup, models.KindTasks, in)
	if err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(plan.Tasks))
	for _, t := range plan.Tasks {
		tasks = append(tasks, models.Task{
			Title:         t.Title,
			Description:   t.Description,
			Status:        models.TaskStatus(t.Status),
			EstimateHours: *t.EstimateHours,
			SkillTag:      models.SkillTag(t.SkillTag),
		})
	}

	if err := s.store.ReplaceTasks(ctx, startup.ID, tasks); err != nil {
		s.logger.Error().Err(err).Str("startup_id", startup.ID.String()).Msg("Failed to store tasks")
		return nil, ErrPersistence
	}

	s.revalidate(ctx, startup.ID, models.KindTasks)
	return tasks, nil
}

func (s *GenerationService) GenerateGTM(ctx context.Context, startup *models.Startup, mvp *schemas.MVPScope) (*schemas.GTMStrategy, error) {
	in := prompts.NewInput(startup).With("MVP scope", mvp)
	return generate[schemas.GTMStrategy](ctx, s, startup, models.KindGTM, in)
}

func (s *GenerationService) GenerateCosts(ctx context.Context, startup *models.Startup, gtm *schemas.GTMStrategy, stack *schemas.TechStack) (*schemas.Costs, error) {
	in := prompts.NewInput(startup).With("Go-to-market strategy", gtm).With("Tech stack", stack)
	return generate[schemas.Costs](ctx, s, startup, models.KindCosts, in)
}

func (s *GenerationService) GenerateMetrics(ctx context.Context, startup *models.Startup, gtm *schemas.GTMStrategy, costs *schemas.Costs) (*schemas.SuccessMetrics, error) {
	in := prompts.NewInput(startup).With("Go-to-market strategy", gtm).With("Costs", costs)
	return generate[schemas.SuccessMetrics](ctx, s, startup, models.KindMetrics, in)
}

// Generate runs a single generation of kind for a startup owned by userID,
// using whatever earlier artifacts are already stored as context.
func (s *GenerationService) Generate(ctx context.Context, userID, startupID uuid.UUID, kind models.ArtifactKind) (any, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if !kind.Valid() && kind != models.KindTasks {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}

	startup, err := s.store.GetStartup(ctx, startupID, userID)
	if err != nil {
		return nil, notFound(err)
	}

	if models.KindGated(kind) {
		if err := s.premium.RequirePremium(ctx, userID); err != nil {
			return nil, err
		}
	}

	prior, err := s.loadArtifacts(ctx, startup.ID)
	if err != nil {
		return nil, err
	}

	switch kind {
	case models.KindEvaluation:
		return s.GenerateEvaluation(ctx, startup)
	case models.KindQuestions:
		return s.GenerateQuestions(ctx, startup, artifact[schemas.Evaluation](prior, models.KindEvaluation))
	case models.KindCompetitors:
		return s.GenerateCompetitors(ctx, startup)
	case models.KindAnalysis:
		return s.GenerateAnalysis(ctx, startup, artifact[schemas.Competitors](prior, models.KindCompetitors))
	case models.KindMVP:
		return s.GenerateMVP(ctx, startup, artifact[schemas.Evaluation](prior, models.KindEvaluation))
	case models.KindTechStack:
		mvp, err := required[schemas.MVPScope](prior, models.KindMVP)
		if err != nil {
			return nil, err
		}
		return s.GenerateTechStack(ctx, startup, mvp)
	case models.KindRoadmap:
		mvp, err := required[schemas.MVPScope](prior, models.KindMVP)
		if err != nil {
			return nil, err
		}
		return s.GenerateRoadmap(ctx, startup, mvp, artifact[schemas.TechStack](prior, models.KindTechStack))
	case models.KindTasks:
		roadmap, err := required[schemas.Roadmap](prior, models.KindRoadmap)
		if err != nil {
			return nil, err
		}
		return s.GenerateTasks(ctx, startup, roadmap)
	case models.KindGTM:
		return s.GenerateGTM(ctx, startup, artifact[schemas.MVPScope](prior, models.KindMVP))
	case models.KindCosts:
		gtm, err := required[schemas.GTMStrategy](prior, models.KindGTM)
		if err != nil {
			return nil, err
		}
		return s.GenerateCosts(ctx, startup, gtm, artifact[schemas.TechStack](prior, models.KindTechStack))
	case models.KindMetrics:
		gtm, err := required[schemas.GTMStrategy](prior, models.KindGTM)
		if err != nil {
			return nil, err
		}
		return s.GenerateMetrics(ctx, startup, gtm, artifact[schemas.Costs](prior, models.KindCosts))
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
}

// ErrMissingContext is returned when a generation needs an earlier artifact
// that has not been generated yet.
var ErrMissingContext = errors.New("generate the earlier step first")

func (s *GenerationService) loadArtifacts(ctx context.Context, startupID uuid.UUID) (map[models.ArtifactKind]json.RawMessage, error) {
	outputs, err := s.store.ListAIOutputs(ctx, startupID)
	if err != nil && !errors.Is(err, supabase.ErrNotFound) {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}

	prior := make(map[models.ArtifactKind]json.RawMessage, len(outputs))
	for _, out := range outputs {
		prior[out.Kind] = out.Payload
	}
	return prior, nil
}

// artifact decodes a stored artifact, returning nil when it is absent or no
// longer matches its schema.
func artifact[T any](prior map[models.ArtifactKind]json.RawMessage, kind models.ArtifactKind) *T {
	raw, ok := prior[kind]
	if !ok {
		return nil
	}
	v, _ := decode[T](raw)
	return v
}

func required[T any](prior map[models.ArtifactKind]json.RawMessage, kind models.ArtifactKind) (*T, error) {
	v := artifact[T](prior, kind)
	if v == nil {
		return nil, fmt.Errorf("%w: %s is missing", ErrMissingContext, kind)
	}
	return v, nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: true}
}
