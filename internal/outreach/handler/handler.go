package handler

import (
	"net/http"

	leadsrepo "salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/outreach/repository"
	"salesorch_backend/internal/outreach/service"
	"salesorch_backend/internal/outreach/transport"
	"salesorch_backend/platform/httpkit"
	"salesorch_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid id"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/emails", h.Log)
	rg.GET("/emails/stats", h.Stats)
	rg.POST("/emails/preview", h.Preview)
	rg.POST("/emails/generate", h.Generate)
	rg.POST("/emails/send", h.Send)
}

func (h *Handler) Preview(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	lead, subject, body, err := h.svc.Preview(c.Request.Context(), id.OrgID(), leadID, req.Subject, req.Body)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.PreviewResponse{
		Lead:    leadSummary(lead),
		Subject: subject,
		Body:    body,
	})
}

func (h *Handler) Send(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	params := service.SendParams{Subject: req.Subject, Body: req.Body}
	if req.EmailID != nil && *req.EmailID != "" {
		emailID, err := uuid.Parse(*req.EmailID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
			return
		}
		params.EmailID = &emailID
	}
	if req.LeadID != nil && *req.LeadID != "" {
		leadID, err := uuid.Parse(*req.LeadID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
			return
		}
		params.LeadID = &leadID
	}

	email, err := h.svc.Send(c.Request.Context(), id.OrgID(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, emailResponse(email))
}

func (h *Handler) Generate(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	leadID, err := uuid.Parse(req.LeadID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	email, created, err := h.svc.Generate(c.Request.Context(), id.OrgID(), service.GenerateParams{
		LeadID:        leadID,
		Prompt:        req.Prompt,
		SubjectPrompt: req.SubjectPrompt,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	httpkit.JSON(c, status, emailResponse(email))
}

func (h *Handler) Log(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	emails, err := h.svc.List(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.EmailResponse, 0, len(emails))
	for _, email := range emails {
		out = append(out, emailResponse(email))
	}
	httpkit.OK(c, out)
}

func (h *Handler) Stats(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	stats, timeline, err := h.svc.Stats(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.TimelineItem, 0, len(timeline))
	for _, email := range timeline {
		items = append(items, transport.TimelineItem{
			ID:        email.ID.String(),
			Subject:   email.Subject,
			LeadEmail: email.LeadEmailAddress,
			LeadName:  email.LeadName(),
			SentAt:    email.SentAt,
			OpenedAt:  email.Meta["opened_at"],
			RepliedAt: email.Meta["replied_at"],
			AIReply:   email.Meta["ai_reply"],
		})
	}

	httpkit.OK(c, transport.StatsResponse{
		Stats: transport.Stats{
			Total:   stats.Total,
			Sent:    stats.Sent,
			Drafts:  stats.Drafts,
			Failed:  stats.Failed,
			Opened:  stats.Opened,
			Replied: stats.Replied,
		},
		Timeline: items,
	})
}

func leadSummary(lead leadsrepo.Lead) transport.LeadSummary {
	return transport.LeadSummary{
		ID:        lead.ID.String(),
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Email:     lead.Email,
		Company:   lead.Company,
		Status:    string(lead.Status),
	}
}

func emailResponse(email repository.LeadEmail) transport.EmailResponse {
	return transport.EmailResponse{
		ID:        email.ID.String(),
		LeadID:    email.LeadID.String(),
		LeadName:  email.LeadName(),
		LeadEmail: email.LeadEmailAddress,
		Subject:   email.Subject,
		Body:      email.Body,
		Preview:   email.Preview,
		Status:    string(email.Status),
		SentAt:    email.SentAt,
		Meta:      email.Meta,
		CreatedAt: email.CreatedAt,
		UpdatedAt: email.UpdatedAt,
	}
}
