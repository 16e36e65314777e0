package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "finanzas/internal/errors"
	"finanzas/internal/services"
)

// ProfileHandler serves the authenticated user's profile.
type ProfileHandler struct {
	userService  services.UserServicer
	auditService services.AuditServicer
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService services.UserServicer, auditService services.AuditServicer) *ProfileHandler {
	return &ProfileHandler{userService: userService, auditService: auditService}
}

// UpdateProfileRequest represents the profile update payload
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Currency *string `json:"currency" binding:"omitempty,iso4217"`
}

// GetProfile returns the user's profile
// @Summary     Get user profile
// @Description Get the authenticated user's profile information
// @Tags        user
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} UserResponse "User profile"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.userService.GetUserByID(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

// UpdateProfile changes the user's name or display currency
// @Summary     Update user profile
// @Tags        user
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Profile fields"
// @Success     200 {object} UserResponse "Updated profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /profile [put]
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	user, err := h.userService.UpdateProfile(userID, req.Name, req.Currency)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, "UPDATE_PROFILE", "user", userID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}
