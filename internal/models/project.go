package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type StartupStatus string

const (
	StatusEvaluating StartupStatus = "evaluating"
	StatusEvaluated  StartupStatus = "evaluated"
	StatusInProgress StartupStatus = "in_progress"
	StatusCompleted  StartupStatus = "completed"
)

// Valid reports whether s is one of the known statuses. Transitions between
// statuses are not checked anywhere.
func (s StartupStatus) Valid() bool {
	switch s {
	case StatusEvaluating, StatusEvaluated, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Startup is a founder's project. The dashboard calls it a project; the
// table is named startups.
type Startup struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Idea         string
	TargetUsers  sql.NullString
	BusinessType sql.NullString
	Geography    sql.NullString
	FounderType  sql.NullString
	Status       StartupStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Title is a short label for lists and page headers.
func (s *Startup) Title() string {
	const max = 60
	r := []rune(s.Idea)
	if len(r) <= max {
		return s.Idea
	}
	return string(r[:max]) + "…"
}
