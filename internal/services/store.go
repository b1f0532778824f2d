package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"startup-os-backend/internal/models"
)

// The store interfaces are satisfied by *supabase.DatabaseClient.

type StartupStore interface {
	CreateStartup(ctx context.Context, s *models.Startup) error
	GetStartup(ctx context.Context, startupID, userID uuid.UUID) (*models.Startup, error)
	ListStartups(ctx context.Context, userID uuid.UUID) ([]models.Startup, error)
	UpdateStartupStatus(ctx context.Context, startupID, userID uuid.UUID, status models.StartupStatus) error
}

type ArtifactStore interface {
	UpsertAIOutput(ctx context.Context, out *models.AIOutput) error
	GetAIOutput(ctx context.Context, startupID uuid.UUID, kind models.ArtifactKind) (*models.AIOutput, error)
	ListAIOutputs(ctx context.Context, startupID uuid.UUID) ([]models.AIOutput, error)
}

type TaskStore interface {
	ReplaceTasks(ctx context.Context, startupID uuid.UUID, tasks []models.Task) error
	ListTasks(ctx context.Context, startupID uuid.UUID) ([]models.Task, error)
	UpdateTask(ctx context.Context, startupID, taskID uuid.UUID, patch models.TaskPatch) (*models.Task, error)
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	UpdateSubscription(ctx context.Context, userID uuid.UUID, tier models.SubscriptionTier, startedAt, expiresAt time.Time) error
	EndSubscription(ctx context.Context, userID uuid.UUID, endedAt time.Time) error
}

type Store interface {
	StartupStore
	ArtifactStore
	TaskStore
	ProfileStore
}

// Revalidator evicts cached renders of page routes.
type Revalidator interface {
	Revalidate(ctx context.Context, paths ...string) error
}

// Uploader writes export documents to object storage.
type Uploader interface {
	UploadJSON(storagePath string, data []byte) (string, error)
}
