package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskBacklog    TaskStatus = "backlog"
	TaskInProgress TaskStatus = "in_progress"
	TaskBlocked    TaskStatus = "blocked"
	TaskDone       TaskStatus = "done"
)

type SkillTag string

const (
	SkillFrontend SkillTag = "frontend"
	SkillBackend  SkillTag = "backend"
	SkillAI       SkillTag = "ai"
	SkillBusiness SkillTag = "business"
)

type Task struct {
	ID            uuid.UUID
	StartupID     uuid.UUID
	Title         string
	Description   string
	Status        TaskStatus
	EstimateHours float64
	SkillTag      SkillTag
	Position      int
	CreatedAt     time.Time
}

// TaskPatch carries the fields of a task edit; nil means unchanged.
type TaskPatch struct {
	Title         *string
	Description   *string
	Status        *TaskStatus
	EstimateHours *float64
	SkillTag      *SkillTag
	Position      *int
}

func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.EstimateHours == nil && p.SkillTag == nil && p.Position == nil
}
