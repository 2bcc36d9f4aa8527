package transport

import "time"

type CreateLeadRequest struct {
	CampaignID  *string `json:"campaign_id,omitempty" validate:"omitempty,uuid"`
	FirstName   string  `json:"first_name" validate:"max=120"`
	LastName    string  `json:"last_name" validate:"max=120"`
	Email       string  `json:"email" validate:"required,email"`
	Company     string  `json:"company" validate:"max=255"`
	LinkedinURL string  `json:"linkedin_url" validate:"omitempty,url"`
	Website     string  `json:"website" validate:"omitempty,url"`
	Phone       string  `json:"phone" validate:"max=50"`
}

type UpdateLeadRequest struct {
	CampaignID  *string `json:"campaign_id,omitempty" validate:"omitempty,uuid"`
	FirstName   *string `json:"first_name,omitempty" validate:"omitempty,max=120"`
	LastName    *string `json:"last_name,omitempty" validate:"omitempty,max=120"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Company     *string `json:"company,omitempty" validate:"omitempty,max=255"`
	LinkedinURL *string `json:"linkedin_url,omitempty" validate:"omitempty,url"`
	Website     *string `json:"website,omitempty" validate:"omitempty,url"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Status      *string `json:"status,omitempty" validate:"omitempty,oneof=new contacted replied"`
}

type LeadResponse struct {
	ID              string     `json:"id"`
	CampaignID      *string    `json:"campaign,omitempty"`
	CampaignName    string     `json:"campaign_name,omitempty"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	Company         string     `json:"company"`
	LinkedinURL     string     `json:"linkedin_url"`
	Website         string     `json:"website"`
	Phone           string     `json:"phone"`
	Status          string     `json:"status"`
	LastContactedAt *time.Time `json:"last_contacted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type ImportResponse struct {
	FileName  string              `json:"file_name"`
	TotalRows int                 `json:"total_rows"`
	Preview   []map[string]string `json:"preview"`
	Committed bool                `json:"committed"`
	Stats     ImportStats         `json:"stats"`
}

type ImportStats struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}
