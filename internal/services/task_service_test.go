package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"startup-os-backend/internal/models"
	"startup-os-backend/internal/schemas"
	"startup-os-backend/internal/services"
)

func strPtr(s string) *string { return &s }

func TestTaskUpdate(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	startup := h.store.addStartup(userID)
	require.NoError(t, h.store.ReplaceTasks(context.Background(), startup.ID, []models.Task{
		{Title: "Landing page", Status: models.TaskBacklog, SkillTag: models.SkillFrontend},
	}))
	tasks, err := h.tasks.List(context.Background(), userID, startup.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	updated, err := h.tasks.Update(context.Background(), userID, startup.ID, tasks[0].ID, models.UpdateTaskRequest{
		Status: strPtr("done"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.TaskDone, updated.Status)
	assert.Equal(t, "Landing page", updated.Title)
	assert.True(t, h.pages.has(models.StageBuild.Path(startup.ID)))
}

func TestTaskUpdate_Rejections(t *testing.T) {
	h := newHarness(t)
	userID := uuid.New()
	startup := h.store.addStartup(userID)
	taskID := uuid.New()

	tests := []struct {
		name   string
		userID uuid.UUID
		req    models.UpdateTaskRequest
		check  func(t *testing.T, err error)
	}{
		{
			name:   "empty patch",
			userID: userID,
			check: func(t *testing.T, err error) {
				var verr *schemas.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "no fields to update", verr.Reason)
			},
		},
		{
			name:   "unknown status",
			userID: userID,
			req:    models.UpdateTaskRequest{Status: strPtr("shipped")},
			check: func(t *testing.T, err error) {
				var verr *schemas.ValidationError
				assert.ErrorAs(t, err, &verr)
			},
		},
		{
			name:   "missing task",
			userID: userID,
			req:    models.UpdateTaskRequest{Title: strPtr("Rename")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, services.ErrNotFound)
			},
		},
		{
			name:   "other user",
			userID: uuid.New(),
			req:    models.UpdateTaskRequest{Title: strPtr("Rename")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, services.ErrNotFound)
			},
		},
		{
			name: "anonymous",
			req:  models.UpdateTaskRequest{Title: strPtr("Rename")},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, services.ErrUnauthenticated)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.tasks.Update(context.Background(), tt.userID, startup.ID, taskID, tt.req)
			tt.check(t, err)
		})
	}
}
