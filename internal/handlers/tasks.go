package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"startup-os-backend/internal/models"
)

// TaskUpdater is satisfied by *services.TaskService.
type TaskUpdater interface {
	List(ctx context.Context, userID, startupID uuid.UUID) ([]models.Task, error)
	Update(ctx context.Context, userID, startupID, taskID uuid.UUID, req models.UpdateTaskRequest) (*models.Task, error)
}

type TasksHandler struct {
	tasks TaskUpdater
}

func NewTasksHandler(tasks TaskUpdater) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

// ListTasks godoc
// @Summary     List tasks
// @Tags        tasks
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Success     200 {array} models.TaskResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/tasks [get]
func (h *TasksHandler) ListTasks(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}

	tasks, err := h.tasks.List(c.Request.Context(), userID, startupID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]models.TaskResponse, len(tasks))
	for i := range tasks {
		resp[i] = models.NewTaskResponse(&tasks[i])
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateTask godoc
// @Summary     Update a task
// @Description Applies the provided fields; omitted fields are left unchanged
// @Tags        tasks
// @Accept      json
// @Produce     json
// @Param       projectId path string true "Project ID"
// @Param       taskId path string true "Task ID"
// @Param       request body models.UpdateTaskRequest true "Fields to change"
// @Success     200 {object} models.TaskResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Security    Bearer
// @Router      /api/projects/{projectId}/tasks/{taskId} [patch]
func (h *TasksHandler) UpdateTask(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	startupID, ok := projectID(c)
	if !ok {
		return
	}
	taskID, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid task id"})
		return
	}

	var req models.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Message: err.Error()})
		return
	}

	task, err := h.tasks.Update(c.Request.Context(), userID, startupID, taskID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewTaskResponse(task))
}
