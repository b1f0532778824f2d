package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/supabase"
)

type ExportService struct {
	store    Store
	uploader Uploader
	premium  PremiumChecker
	now      func() time.Time
	logger   zerolog.Logger
}

func NewExportService(store Store, uploader Uploader, premium PremiumChecker, logger zerolog.Logger) *ExportService {
	return &ExportService{
		store:    store,
		uploader: uploader,
		premium:  premium,
		now:      time.Now,
		logger:   logger.With().Str("service", "ExportService").Logger(),
	}
}

func (s *ExportService) WithClock(now func() time.Time) *ExportService {
	s.now = now
	return s
}

// PlanExport is the document written to storage.
type PlanExport struct {
	ExportedAt time.Time                               `json:"exportedAt"`
	Startup    models.StartupResponse                  `json:"startup"`
	Artifacts  map[models.ArtifactKind]json.RawMessage `json:"artifacts"`
	Tasks      []models.TaskResponse                   `json:"tasks"`
}

// Export collects the startup, its stored artifacts and its tasks into one
// JSON document and uploads it.
func (s *ExportService) Export(ctx context.Context, userID, startupID uuid.UUID) (*models.ExportResponse, error) {
	if userID == uuid.Nil {
		return nil, ErrUnauthenticated
	}

	startup, err := s.store.GetStartup(ctx, startupID, userID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.premium.RequirePremium(ctx, userID); err != nil {
		return nil, err
	}

	outputs, err := s.store.ListAIOutputs(ctx, startup.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	tasks, err := s.store.ListTasks(ctx, startup.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	now := s.now().UTC()
	doc := PlanExport{
		ExportedAt: now,
		Startup:    models.NewStartupResponse(startup),
		Artifacts:  make(map[models.ArtifactKind]json.RawMessage, len(outputs)),
		Tasks:      make([]models.TaskResponse, 0, len(tasks)),
	}
	for _, out := range outputs {
		doc.Artifacts[out.Kind] = out.Payload
	}
	for i := range tasks {
		doc.Tasks = append(doc.Tasks, models.NewTaskResponse(&tasks[i]))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}

	path := supabase.ExportPath(userID, startup.ID, fmt.Sprintf("plan-%d.json", now.Unix()))
	url, err := s.uploader.UploadJSON(path, data)
	if err != nil {
		s.logger.Error().Err(err).Str("startup_id", startup.ID.String()).Msg("Failed to upload export")
		return nil, ErrPersistence
	}

	s.logger.Info().Str("startup_id", startup.ID.String()).Str("path", path).Msg("Exported plan")
	return &models.ExportResponse{Path: path, URL: url}, nil
}
