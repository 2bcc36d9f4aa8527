package handler

import (
	"fmt"
	"html"
	"net/http"
	"strconv"

	"salesorch_backend/internal/integrations/gmail"
	"salesorch_backend/internal/integrations/repository"
	"salesorch_backend/internal/integrations/service"
	"salesorch_backend/internal/integrations/transport"
	"salesorch_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc             *service.Service
	frontendBaseURL string
}

func New(svc *service.Service, frontendBaseURL string) *Handler {
	return &Handler{svc: svc, frontendBaseURL: frontendBaseURL}
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/integrations/status", h.Status)
	rg.GET("/integrations/google/login", h.GoogleLogin)
	rg.GET("/integrations/hubspot/init", h.HubSpotInit)
	rg.GET("/integrations/google/messages", h.GoogleMessages)
	rg.GET("/integrations/google/threads/:threadID/replies", h.GoogleThreadReplies)
	rg.GET("/integrations/hubspot/sync-contacts", h.HubSpotSyncContacts)
	rg.DELETE("/integrations/disconnect/:provider", h.Disconnect)
}

// Callbacks are hit by the provider redirect, so they live outside the
// auth middleware. Identity comes from the signed state parameter.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/integrations/google/callback", h.GoogleCallback)
	rg.GET("/integrations/hubspot/callback", h.HubSpotCallback)
}

func (h *Handler) GoogleLogin(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	authURL, err := h.svc.InitGoogleAuth(c.Request.Context(), id.UserID(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.AuthURLResponse{AuthURL: authURL})
}

func (h *Handler) HubSpotInit(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	authURL, err := h.svc.InitHubSpotAuth(c.Request.Context(), id.UserID(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.AuthURLResponse{AuthURL: authURL})
}

// GoogleCallback finishes the Gmail connect flow and closes the consent
// popup, notifying the opener window on the frontend origin.
func (h *Handler) GoogleCallback(c *gin.Context) {
	_, err := h.svc.HandleGoogleCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if httpkit.HandleError(c, err) {
		return
	}

	page := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body>
<script>
if (window.opener) {
  window.opener.postMessage({"type":"GOOGLE_OAUTH_SUCCESS","provider":"gmail"}, %q);
}
window.close();
</script>
<p>Gmail connected. You can close this window.</p>
</body>
</html>`, html.EscapeString(h.frontendBaseURL))
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

func (h *Handler) HubSpotCallback(c *gin.Context) {
	in, err := h.svc.HandleHubSpotCallback(c.Request.Context(), c.Query("code"), c.Query("state"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ConnectedResponse{
		Message:     "HubSpot connected successfully",
		Integration: integrationSummary(in),
	})
}

func (h *Handler) Status(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	integrations, err := h.svc.Status(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.IntegrationSummary, 0, len(integrations))
	for _, in := range integrations {
		out = append(out, integrationSummary(in))
	}
	httpkit.OK(c, transport.StatusResponse{Integrations: out})
}

func (h *Handler) Disconnect(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	err := h.svc.Disconnect(c.Request.Context(), id.OrgID(), c.Param("provider"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.DisconnectResponse{Status: "disconnected"})
}

func (h *Handler) GoogleMessages(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	maxResults, _ := strconv.Atoi(c.Query("max_results"))
	messages, err := h.svc.Messages(c.Request.Context(), id.OrgID(), c.Query("q"), maxResults)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.MessagesResponse{Messages: messageResponses(messages)})
}

func (h *Handler) GoogleThreadReplies(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	messages, err := h.svc.ThreadReplies(c.Request.Context(), id.OrgID(), c.Param("threadID"))
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.MessagesResponse{Messages: messageResponses(messages)})
}

func (h *Handler) HubSpotSyncContacts(c *gin.Context) {
	id := httpkit.MustGetIdentity(c)
	if id == nil {
		return
	}

	contacts, err := h.svc.SyncContacts(c.Request.Context(), id.OrgID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.ContactResponse, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, transport.ContactResponse{
			ID:         contact.ID,
			Properties: contact.Properties,
			CreatedAt:  contact.CreatedAt,
			UpdatedAt:  contact.UpdatedAt,
		})
	}
	httpkit.OK(c, transport.ContactsResponse{Contacts: out})
}

func integrationSummary(in repository.Integration) transport.IntegrationSummary {
	return transport.IntegrationSummary{
		ID:        in.ID.String(),
		Provider:  string(in.Provider),
		ExpiresAt: in.ExpiresAt,
	}
}

func messageResponses(messages []gmail.Message) []transport.MessageResponse {
	out := make([]transport.MessageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, transport.MessageResponse{
			ID:       m.ID,
			ThreadID: m.ThreadID,
			Subject:  m.Subject,
			From:     m.From,
			To:       m.To,
			Date:     m.Date,
			Body:     m.Body,
			Snippet:  m.Snippet,
		})
	}
	return out
}
