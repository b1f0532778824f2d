package schemas

import "strings"

// OnboardingForm is the founder's first submission. Only the idea is required.
type OnboardingForm struct {
	Idea         string `json:"idea" form:"idea" validate:"required,min=10,max=2000"`
	TargetUsers  string `json:"targetUsers" form:"targetUsers" validate:"omitempty,max=500"`
	BusinessType string `json:"businessType" form:"businessType" validate:"omitempty,oneof=b2b b2c marketplace saas ecommerce other"`
	Geography    string `json:"geography" form:"geography" validate:"omitempty,max=120"`
	FounderType  string `json:"founderType" form:"founderType" validate:"omitempty,oneof=solo_technical solo_non_technical team"`
}

// Normalize trims whitespace so optional fields left blank are stored as NULL.
func (f *OnboardingForm) Normalize() {
	f.Idea = strings.TrimSpace(f.Idea)
	f.TargetUsers = strings.TrimSpace(f.TargetUsers)
	f.BusinessType = strings.ToLower(strings.TrimSpace(f.BusinessType))
	f.Geography = strings.TrimSpace(f.Geography)
	f.FounderType = strings.ToLower(strings.TrimSpace(f.FounderType))
}
