package handler

import (
	"io"
	"net/http"
	"strconv"

	"salesorch_backend/internal/leads/repository"
	"salesorch_backend/internal/leads/service"
	"salesorch_backend/internal/leads/transport"
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
	svc           *service.Service
	val           *validator.Validator
	maxUploadSize int64
}

func New(svc *service.Service, val *validator.Validator, maxUploadSize int64) *Handler {
	return &Handler{svc: svc, val: val, maxUploadSize: maxUploadSize}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/leads", h.List)
	rg.POST("/leads", h.Create)
	rg.GET("/leads/:leadID", h.Get)
	rg.PATCH("/leads/:leadID", h.Update)
	rg.DELETE("/leads/:leadID", h.Delete)
	rg.POST("/leads/upload", h.Upload)
}

func (h *Handler) List(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leads, err := h.svc.List(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		out = append(out, leadResponse(lead))
	}
	httpkit.OK(c, out)
}

func (h *Handler) Get(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("leadID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	lead, err := h.svc.Get(c.Request.Context(), id.OrgID(), leadID)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leadResponse(lead))
}

func (h *Handler) Create(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	campaignID, ok := parseOptionalUUID(c, req.CampaignID)
	if !ok {
		return
	}

	lead, err := h.svc.Create(c.Request.Context(), id.OrgID(), service.CreateParams{
		CampaignID:  campaignID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Company:     req.Company,
		LinkedinURL: req.LinkedinURL,
		Website:     req.Website,
		Phone:       req.Phone,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, leadResponse(lead))
}

func (h *Handler) Update(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("leadID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	var req transport.UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	campaignID, ok := parseOptionalUUID(c, req.CampaignID)
	if !ok {
		return
	}

	var status *repository.Status
	if req.Status != nil {
		st := repository.Status(*req.Status)
		status = &st
	}

	lead, err := h.svc.Update(c.Request.Context(), id.OrgID(), leadID, service.UpdatePatch{
		CampaignID:  campaignID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Company:     req.Company,
		LinkedinURL: req.LinkedinURL,
		Website:     req.Website,
		Phone:       req.Phone,
		Status:      status,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, leadResponse(lead))
}

func (h *Handler) Delete(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	leadID, err := uuid.Parse(c.Param("leadID"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	if httpkit.HandleError(c, h.svc.Delete(c.Request.Context(), id.OrgID(), leadID)) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Upload accepts a multipart CSV or XLSX file. commit=true persists the
// rows; anything else only returns the parsed preview.
func (h *Handler) Upload(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "no file uploaded", nil)
		return
	}
	if h.maxUploadSize > 0 && fileHeader.Size > h.maxUploadSize {
		httpkit.Error(c, http.StatusRequestEntityTooLarge, "file too large", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "could not read file", nil)
		return
	}

	var campaignID *uuid.UUID
	if raw := c.PostForm("campaign_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
			return
		}
		campaignID = &parsed
	}

	previewRows := defaultPreviewRows
	if raw := c.PostForm("preview_rows"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			previewRows = n
		}
	}

	result, err := h.svc.Import(c.Request.Context(), id.OrgID(), service.ImportParams{
		FileName:    fileHeader.Filename,
		Data:        data,
		CampaignID:  campaignID,
		Commit:      c.PostForm("commit") == "true",
		PreviewRows: previewRows,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ImportResponse{
		FileName:  result.FileName,
		TotalRows: result.TotalRows,
		Preview:   result.Preview,
		Committed: result.Committed,
		Stats:     transport.ImportStats{Created: result.Stats.Created, Updated: result.Stats.Updated},
	})
}

const defaultPreviewRows = 5

func parseOptionalUUID(c *gin.Context, raw *string) (*uuid.UUID, bool) {
	if raw == nil || *raw == "" {
		return nil, true
	}
	parsed, err := uuid.Parse(*raw)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return nil, false
	}
	return &parsed, true
}

func leadResponse(lead repository.Lead) transport.LeadResponse {
	resp := transport.LeadResponse{
		ID:              lead.ID.String(),
		CampaignName:    lead.CampaignName,
		FirstName:       lead.FirstName,
		LastName:        lead.LastName,
		Email:           lead.Email,
		Company:         lead.Company,
		LinkedinURL:     lead.LinkedinURL,
		Website:         lead.Website,
		Phone:           lead.Phone,
		Status:          string(lead.Status),
		LastContactedAt: lead.LastContactedAt,
		CreatedAt:       lead.CreatedAt,
		UpdatedAt:       lead.UpdatedAt,
	}
	if lead.CampaignID != nil {
		s := lead.CampaignID.String()
		resp.CampaignID = &s
	}
	return resp
}
