package handlers

import (
	"net/http"

	"github.com/EshwarReddy13/tassot-backend/internal/api/middleware"
	"github.com/EshwarReddy13/tassot-backend/internal/models"
	"github.com/EshwarReddy13/tassot-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ============================================
// Invitation Handler
// ============================================

type InvitationHandler struct {
	invitationService service.InvitationService
}

func (h *InvitationHandler) Create(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	var req models.CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	invitation, err := h.invitationService.Create(c.Request.Context(), c.Param("projectUrl"), userID, req.Email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(invitation))
}

// Verify is public: anyone holding the token link can look it up.
func (h *InvitationHandler) Verify(c *gin.Context) {
	details, err := h.invitationService.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VerifyInvitationResponse{
		InviteeEmail: details.InviteeEmail,
		ProjectName:  details.ProjectName,
		InviterName:  details.InviterName,
	})
}

func (h *InvitationHandler) Accept(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}
	userEmail := middleware.GetUserEmail(c)

	var req models.AcceptInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	accepted, err := h.invitationService.Accept(c.Request.Context(), req.Token, userID, userEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AcceptInvitationResponse{
		Message:    "Invitation accepted",
		ProjectURL: accepted.ProjectURL,
	})
}

func (h *InvitationHandler) ListPending(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListPending(c.Request.Context(), c.Param("projectUrl"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]models.InvitationResponse, len(invitations))
	for i, inv := range invitations {
		response[i] = toInvitationResponse(inv)
	}
	c.JSON(http.StatusOK, response)
}

func (h *InvitationHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.RequireUserID(c)
	if !ok {
		return
	}

	err := h.invitationService.Cancel(c.Request.Context(), c.Param("projectUrl"), c.Param("invitationId"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invitation cancelled"})
}
