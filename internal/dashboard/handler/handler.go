package handler

import (
	"salesorch_backend/internal/dashboard/service"
	"salesorch_backend/internal/dashboard/transport"
	"salesorch_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/summary", h.Summary)
}

func (h *Handler) Summary(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, summaryResponse(summary))
}

func summaryResponse(summary service.Summary) transport.SummaryResponse {
	byStatus := make(map[string]int, len(summary.LeadsByStatus))
	for status, count := range summary.LeadsByStatus {
		byStatus[string(status)] = count
	}

	recentLeads := make([]transport.RecentLeadResponse, 0, len(summary.RecentLeads))
	for _, lead := range summary.RecentLeads {
		recentLeads = append(recentLeads, transport.RecentLeadResponse{
			ID:        lead.ID.String(),
			Name:      lead.FullName(),
			Email:     lead.Email,
			Company:   lead.Company,
			Status:    string(lead.Status),
			CreatedAt: lead.CreatedAt,
		})
	}

	recentEmails := make([]transport.RecentEmailResponse, 0, len(summary.RecentEmails))
	for _, email := range summary.RecentEmails {
		recentEmails = append(recentEmails, transport.RecentEmailResponse{
			ID:        email.ID.String(),
			Subject:   email.Subject,
			LeadEmail: email.LeadEmailAddress,
			Status:    string(email.Status),
			SentAt:    email.SentAt,
			CreatedAt: email.CreatedAt,
		})
	}

	campaigns := make([]transport.CampaignPerformanceResponse, 0, len(summary.Campaigns))
	for _, c := range summary.Campaigns {
		campaigns = append(campaigns, transport.CampaignPerformanceResponse{
			CampaignID:   c.CampaignID.String(),
			CampaignName: c.CampaignName,
			Leads:        c.Leads,
			Contacted:    c.Contacted,
			EmailsSent:   c.EmailsSent,
		})
	}

	integrations := make([]transport.IntegrationStatusResponse, 0, len(summary.Integrations))
	for _, in := range summary.Integrations {
		integrations = append(integrations, transport.IntegrationStatusResponse{
			Provider:  in.Provider,
			Connected: in.Connected,
		})
	}

	return transport.SummaryResponse{
		Metrics: transport.MetricsResponse{
			TotalLeads:      summary.Metrics.TotalLeads,
			TotalCampaigns:  summary.Metrics.TotalCampaigns,
			EmailsSent:      summary.Metrics.EmailsSent,
			ActiveSequences: summary.Metrics.ActiveSequences,
		},
		LeadsByStatus: byStatus,
		RecentLeads:   recentLeads,
		RecentEmails:  recentEmails,
		Campaigns:     campaigns,
		Integrations:  integrations,
	}
}
