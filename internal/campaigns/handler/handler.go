package handler

import (
	"net/http"

	"salesorch_backend/internal/campaigns/repository"
	"salesorch_backend/internal/campaigns/service"
	"salesorch_backend/internal/campaigns/transport"
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
	rg.GET("/campaigns", h.List)
	rg.POST("/campaigns", h.Create)
	rg.PATCH("/campaigns/:campaignID", h.Update)
	rg.DELETE("/campaigns/:campaignID", h.Delete)

	rg.GET("/sequence-steps", h.ListSteps)
	rg.POST("/sequence-steps", h.CreateStep)
	rg.PATCH("/sequence-steps/:stepID", h.UpdateStep)
	rg.DELETE("/sequence-steps/:stepID", h.DeleteStep)
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	campaigns, err := h.svc.List(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.CampaignResponse, 0, len(campaigns))
	for _, campaign := range campaigns {
		out = append(out, campaignResponse(campaign))
	}
	httpkit.OK(c, out)
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	campaign, err := h.svc.Create(c.Request.Context(), id.OrgID(), req.Name)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, campaignResponse(campaign))
}

func (h *Handler) Update(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	campaign, err := h.svc.Update(c.Request.Context(), id.OrgID(), campaignID, req.Name)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, campaignResponse(campaign))
}

func (h *Handler) Delete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id.OrgID(), campaignID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListSteps(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	campaignID, err := uuid.Parse(c.Query("campaign_id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "campaign_id is required", nil)
		return
	}

	steps, err := h.svc.ListSteps(c.Request.Context(), id.OrgID(), campaignID)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.StepResponse, 0, len(steps))
	for _, step := range steps {
		out = append(out, stepResponse(step))
	}
	httpkit.OK(c, out)
}

func (h *Handler) CreateStep(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	campaignID, err := uuid.Parse(req.CampaignID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	step, err := h.svc.CreateStep(c.Request.Context(), id.OrgID(), repository.SequenceStep{
		CampaignID: campaignID,
		Order:      req.Order,
		Action:     repository.StepAction(req.Action),
		WaitDays:   req.WaitDays,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, stepResponse(step))
}

func (h *Handler) UpdateStep(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	stepID, err := uuid.Parse(c.Param("stepID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var action *repository.StepAction
	if req.Action != nil {
		a := repository.StepAction(*req.Action)
		action = &a
	}

	step, err := h.svc.UpdateStep(c.Request.Context(), id.OrgID(), stepID, req.Order, action, req.WaitDays)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, stepResponse(step))
}

func (h *Handler) DeleteStep(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	stepID, err := uuid.Parse(c.Param("stepID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.DeleteStep(c.Request.Context(), id.OrgID(), stepID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

func campaignResponse(campaign repository.Campaign) transport.CampaignResponse {
	return transport.CampaignResponse{
		ID:        campaign.ID.String(),
		Name:      campaign.Name,
		CreatedAt: campaign.CreatedAt,
		UpdatedAt: campaign.UpdatedAt,
	}
}

func stepResponse(step repository.SequenceStep) transport.StepResponse {
	return transport.StepResponse{
		ID:         step.ID.String(),
		CampaignID: step.CampaignID.String(),
		Order:      step.Order,
		Action:     string(step.Action),
		WaitDays:   step.WaitDays,
		CreatedAt:  step.CreatedAt,
		UpdatedAt:  step.UpdatedAt,
	}
}
