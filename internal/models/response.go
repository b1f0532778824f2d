package models

import "time"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db,omitempty"`
}

// ActionResult is what every action endpoint answers with. Orchestrations
// report the steps they completed and, on failure, the step that stopped them.
type ActionResult struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Completed  []string `json:"completed,omitempty"`
	FailedStep string   `json:"failedStep,omitempty"`
	Data       any      `json:"data,omitempty"`
}

type StartupResponse struct {
	ID           string    `json:"id"`
	Idea         string    `json:"idea"`
	TargetUsers  string    `json:"targetUsers,omitempty"`
	BusinessType string    `json:"businessType,omitempty"`
	Geography    string    `json:"geography,omitempty"`
	FounderType  string    `json:"founderType,omitempty"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewStartupResponse(s *Startup) StartupResponse {
	return StartupResponse{
		ID:           s.ID.String(),
		Idea:         s.Idea,
		TargetUsers:  s.TargetUsers.String,
		BusinessType: s.BusinessType.String,
		Geography:    s.Geography.String,
		FounderType:  s.FounderType.String,
		Status:       string(s.Status),
		CreatedAt:    s.CreatedAt,
	}
}

type TaskResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	EstimateHours float64   `json:"estimateHours"`
	SkillTag      string    `json:"skillTag"`
	Position      int       `json:"position"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:            t.ID.String(),
		Title:         t.Title,
		Description:   t.Description,
		Status:        string(t.Status),
		EstimateHours: t.EstimateHours,
		SkillTag:      string(t.SkillTag),
		Position:      t.Position,
		CreatedAt:     t.CreatedAt,
	}
}

type SubscriptionResponse struct {
	Tier      string     `json:"tier"`
	IsPremium bool       `json:"isPremium"`
	StartedAt *time.Time `json:"startedAt,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

func NewSubscriptionResponse(p *Profile, now time.Time) SubscriptionResponse {
	resp := SubscriptionResponse{
		Tier:      string(p.SubscriptionTier),
		IsPremium: p.IsPremium(now),
	}
	if p.SubscriptionStartedAt.Valid {
		t := p.SubscriptionStartedAt.Time
		resp.StartedAt = &t
	}
	if p.SubscriptionExpiresAt.Valid {
		t := p.SubscriptionExpiresAt.Time
		resp.ExpiresAt = &t
	}
	return resp
}

type OverviewResponse struct {
	Startups     []StartupResponse    `json:"startups"`
	Subscription SubscriptionResponse `json:"subscription"`
}

type ExportResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}
