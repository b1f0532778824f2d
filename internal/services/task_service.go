package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/supabase"
)

type TaskService struct {
	store  Store
	pages  Revalidator
	logger zerolog.Logger
}

func NewTaskService(store Store, pages Revalidator, logger zerolog.Logger) *TaskService {
	return &TaskService{
		store:  store,
		pages:  pages,
		logger: logger.With().Str("service", "TaskService").Logger(),
	}
}

func (s *TaskService) List(ctx context.Context, userID, startupID uuid.UUID) ([]models.Task, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if _, err := s.store.GetStartup(ctx, startupID, userID); err != nil {
		return nil, notFound(err)
	}
	return s.store.ListTasks(ctx, startupID)
}

// Update applies the provided fields of req to one task of the caller's
// startup.
func (s *TaskService) Update(ctx context.Context, userID, startupID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}
	if err := schemas.Check(&req); err != nil {
		return nil, err
	}
	patch := req.Patch()
	if patch.Empty() {
		return nil, &schemas.ValidationError{Schema: "UpdateTaskRequest", Reason: "no fields to update"}
	}

	if _, err := s.store.GetStartup(ctx, startupID, userID); err != nil {
		return nil, notFound(err)
	}

	task, err := s.store.UpdateTask(ctx, startupID, taskID, patch)
	if errors.Is(err, supabase.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error().Err(err).Str("task_id", taskID.String()).Msg("Failed to update task")
		return nil, ErrPersistence
	}

	if err := s.pages.Revalidate(ctx, models.StageBuild.Path(startupID)); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to revalidate build page")
	}
	return task, nil
}
