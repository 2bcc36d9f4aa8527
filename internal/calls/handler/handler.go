package handler

import (
	"net/http"

	"salesorch_backend/internal/calls/repository"
	"salesorch_backend/internal/calls/service"
	"salesorch_backend/internal/calls/transport"
	"salesorch_backend/platform/httpkit"
	"salesorch_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/calls", h.List)
}

// The webhook is called by the external calling service, so it lives
// outside the auth middleware.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/calls/webhook", h.Webhook)
}

func (h *Handler) Webhook(c *gin.Context) {
	var req transport.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request", nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	params := service.WebhookParams{
		CallSID:      req.CallSID,
		RecordingURL: req.RecordingURL,
		Summary:      req.Summary,
	}
	if req.LeadID != nil && *req.LeadID != "" {
		leadID, err := uuid.Parse(*req.LeadID)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid id", nil)
			return
		}
		params.LeadID = &leadID
	}

	call, err := h.svc.RecordWebhook(c.Request.Context(), params)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, callResponse(call))
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	calls, err := h.svc.List(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.CallResponse, 0, len(calls))
	for _, call := range calls {
		out = append(out, callResponse(call))
	}
	httpkit.OK(c, out)
}

func callResponse(call repository.Call) transport.CallResponse {
	resp := transport.CallResponse{
		ID:           call.ID.String(),
		CallSID:      call.CallSID,
		RecordingURL: call.RecordingURL,
		Summary:      call.Summary,
		CreatedAt:    call.CreatedAt,
		UpdatedAt:    call.UpdatedAt,
	}
	if call.LeadID != nil {
		leadID := call.LeadID.String()
		resp.LeadID = &leadID
	}
	return resp
}
