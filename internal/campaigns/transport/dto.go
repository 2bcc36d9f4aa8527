package transport

import "time"

type CreateCampaignRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type UpdateCampaignRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

type CampaignResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateStepRequest struct {
	CampaignID string `json:"campaign_id" validate:"required,uuid"`
	Order      int    `json:"order" validate:"min=0"`
	Action     string `json:"action" validate:"required,oneof=send_email wait"`
	WaitDays   int    `json:"wait_days" validate:"min=0"`
}

type UpdateStepRequest struct {
	Order    *int    `json:"order" validate:"omitempty,min=0"`
	Action   *string `json:"action" validate:"omitempty,oneof=send_email wait"`
	WaitDays *int    `json:"wait_days" validate:"omitempty,min=0"`
}

type StepResponse struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaign_id"`
	Order      int       `json:"order"`
	Action     string    `json:"action"`
	WaitDays   int       `json:"wait_days"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
