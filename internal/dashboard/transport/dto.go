// Package transport defines the wire types for the dashboard summary.
package transport

import "time"

type SummaryResponse struct {
	Metrics       MetricsResponse               `json:"metrics"`
	LeadsByStatus map[string]int                `json:"leads_by_status"`
	RecentLeads   []RecentLeadResponse          `json:"recent_leads"`
	RecentEmails  []RecentEmailResponse         `json:"recent_emails"`
	Campaigns     []CampaignPerformanceResponse `json:"campaigns"`
	Integrations  []IntegrationStatusResponse   `json:"integrations"`
}

type MetricsResponse struct {
	TotalLeads      int `json:"total_leads"`
	TotalCampaigns  int `json:"total_campaigns"`
	EmailsSent      int `json:"emails_sent"`
	ActiveSequences int `json:"active_sequences"`
}

type RecentLeadResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   string    `json:"company"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type RecentEmailResponse struct {
	ID        string     `json:"id"`
	Subject   string     `json:"subject"`
	LeadEmail string     `json:"lead_email"`
	Status    string     `json:"status"`
	SentAt    *time.Time `json:"sent_at"`
	CreatedAt time.Time  `json:"created_at"`
}

type CampaignPerformanceResponse struct {
	CampaignID   string `json:"campaign_id"`
	CampaignName string `json:"campaign_name"`
	Leads        int    `json:"leads"`
	Contacted    int    `json:"contacted"`
	EmailsSent   int    `json:"emails_sent"`
}

type IntegrationStatusResponse struct {
	Provider  string `json:"provider"`
	Connected bool   `json:"connected"`
}
