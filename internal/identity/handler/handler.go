package handler

import (
	"net/http"

	"salesorch_backend/internal/identity/repository"
	"salesorch_backend/internal/identity/service"
	"salesorch_backend/internal/identity/transport"
	"salesorch_backend/platform/httpkit"
	"salesorch_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", h.SignUp)
	rg.POST("/auth/login", h.SignIn)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
	rg.GET("/org/config", h.GetConfig)
	rg.POST("/org/config", h.SaveConfig)
}

func (h *Handler) SignUp(c *gin.Context) {
	var req transport.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), req.OrganizationName, req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, userResponse(user))
}

func (h *Handler) SignIn(c *gin.Context) {
	var req transport.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	token, user, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SignInResponse{
		AccessToken: token,
		User:        userResponse(user),
	})
}

func (h *Handler) Me(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	user, org, err := h.svc.Me(c.Request.Context(), id.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.MeResponse{
		User: userResponse(user),
		Organization: transport.OrgResponse{
			ID:          org.ID.String(),
			Name:        org.Name,
			Description: org.Description,
		},
	})
}

func (h *Handler) GetConfig(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	cfg, err := h.svc.GetConfiguration(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, configPayload(cfg))
}

func (h *Handler) SaveConfig(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	var req transport.OrgConfigPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	saved, err := h.svc.SaveConfiguration(c.Request.Context(), repository.OrgConfiguration{
		OrgID:               id.OrgID(),
		CompanyName:         req.CompanyName,
		CompanyDetails:      req.CompanyDetails,
		ProductName:         req.ProductName,
		ProductDescription:  req.ProductDescription,
		AIModel:             req.AIModel,
		AIModelAPIKey:       req.AIModelAPIKey,
		GoogleClientID:      req.GoogleClientID,
		GoogleClientSecret:  req.GoogleClientSecret,
		FirecrawlAPIKey:     req.FirecrawlAPIKey,
		SlackClientID:       req.SlackClientID,
		SlackClientSecret:   req.SlackClientSecret,
		HubSpotClientID:     req.HubSpotClientID,
		HubSpotClientSecret: req.HubSpotClientSecret,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.SaveConfigResponse{
		Status:           "saved",
		OrgConfigPayload: configPayload(saved),
	})
}

func userResponse(user repository.User) transport.UserResponse {
	resp := transport.UserResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Role:  user.Role,
	}
	if user.OrgID != nil {
		resp.OrgID = user.OrgID.String()
	}
	return resp
}

func configPayload(cfg repository.OrgConfiguration) transport.OrgConfigPayload {
	return transport.OrgConfigPayload{
		CompanyName:         cfg.CompanyName,
		CompanyDetails:      cfg.CompanyDetails,
		ProductName:         cfg.ProductName,
		ProductDescription:  cfg.ProductDescription,
		AIModel:             cfg.AIModel,
		AIModelAPIKey:       cfg.AIModelAPIKey,
		GoogleClientID:      cfg.GoogleClientID,
		GoogleClientSecret:  cfg.GoogleClientSecret,
		FirecrawlAPIKey:     cfg.FirecrawlAPIKey,
		SlackClientID:       cfg.SlackClientID,
		SlackClientSecret:   cfg.SlackClientSecret,
		HubSpotClientID:     cfg.HubSpotClientID,
		HubSpotClientSecret: cfg.HubSpotClientSecret,
	}
}
