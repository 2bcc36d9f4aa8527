package handler

import (
	"salesorch_backend/internal/activities/repository"
	"salesorch_backend/internal/activities/service"
	"salesorch_backend/internal/activities/transport"
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
	rg.GET("/activities", h.Feed)
}

func (h *Handler) Feed(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	entries, err := h.svc.Feed(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.ActivityResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, activityResponse(entry))
	}
	httpkit.OK(c, out)
}

func activityResponse(entry repository.Entry) transport.ActivityResponse {
	resp := transport.ActivityResponse{
		ID:           entry.ID.String(),
		Lead:         entry.LeadID.String(),
		LeadEmail:    entry.LeadEmail,
		CampaignName: entry.CampaignName,
		Payload:      entry.Payload,
		CreatedAt:    entry.CreatedAt,
	}
	if entry.StepID != nil {
		stepID := entry.StepID.String()
		resp.Step = &stepID
	}
	return resp
}
