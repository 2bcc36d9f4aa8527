package transport

type SignUpRequest struct {
	OrganizationName string `json:"organization_name" validate:"required,min=1,max=255"`
	Email            string `json:"email" validate:"required,email"`
	Password         string `json:"password" validate:"required,min=8,max=128"`
}

type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type SignInResponse struct {
	AccessToken string       `json:"access_token"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	OrgID string `json:"org_id,omitempty"`
}

type MeResponse struct {
	User         UserResponse `json:"user"`
	Organization OrgResponse  `json:"organization"`
}

type OrgResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// OrgConfigPayload is both the request and response body for the
// organization configuration endpoint. Fields mirror the stored row;
// unset values come back as empty strings.
type OrgConfigPayload struct {
	CompanyName         string `json:"company_name"`
	CompanyDetails      string `json:"company_details"`
	ProductName         string `json:"product_name"`
	ProductDescription  string `json:"product_description"`
	AIModel             string `json:"ai_model"`
	AIModelAPIKey       string `json:"ai_model_api_key"`
	GoogleClientID      string `json:"google_client_id"`
	GoogleClientSecret  string `json:"google_client_secret"`
	FirecrawlAPIKey     string `json:"firecrawl_api_key"`
	SlackClientID       string `json:"slack_client_id"`
	SlackClientSecret   string `json:"slack_client_secret"`
	HubSpotClientID     string `json:"hubspot_client_id"`
	HubSpotClientSecret string `json:"hubspot_client_secret"`
}

type SaveConfigResponse struct {
	Status string `json:"status"`
	OrgConfigPayload
}
