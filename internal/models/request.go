package models

type UpgradeRequest struct {
	// Optional promo code; a matching code grants the shorter trial window.
	PromoCode string `json:"promoCode" form:"promoCode" example:"LAUNCHWEEK"`
}

type UpdateTaskRequest struct {
	Title         *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description   *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Status        *string  `json:"status,omitempty" validate:"omitempty,oneof=backlog in_progress blocked done"`
	EstimateHours *float64 `json:"estimateHours,omitempty" validate:"omitempty,gte=0,lte=1000"`
	SkillTag      *string  `json:"skillTag,omitempty" validate:"omitempty,oneof=frontend backend ai business"`
	Position      *int     `json:"position,omitempty" validate:"omitempty,gte=0"`
}

// Patch converts the validated request into a TaskPatch.
func (r UpdateTaskRequest) Patch() TaskPatch {
	p := TaskPatch{
		Title:         r.Title,
		Description:   r.Description,
		EstimateHours: r.EstimateHours,
		Position:      r.Position,
	}
	if r.Status != nil {
		s := TaskStatus(*r.Status)
		p.Status = &s
	}
	if r.SkillTag != nil {
		t := SkillTag(*r.SkillTag)
		p.SkillTag = &t
	}
	return p
}

type UpdateStatusRequest struct {
	Status string `json:"status" form:"status" validate:"required,oneof=evaluating evaluated in_progress completed"`
}
