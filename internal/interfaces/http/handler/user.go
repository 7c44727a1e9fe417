package handler

import (
	"github.com/donortrack/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the current user's profile
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfileRequest lists editable profile fields; omitted ones are kept
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Image    *string `json:"image" binding:"omitempty,url"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Location *string `json:"location" binding:"omitempty,max=200"`
	Bio      *string `json:"bio" binding:"omitempty,max=2000"`
}

// GetProfile godoc
// @ID           getCurrentUser
// @Summary      Current user profile
// @Description  Returns the profile with totals of completed donations and active projects
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} APIResponse[identity.ProfileResult]
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /users/me [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// UpdateProfile godoc
// @ID           updateCurrentUser
// @Summary      Update profile
// @Description  Updates name, image, phone, location or bio
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "Profile fields"
// @Success      200 {object} APIResponse[identity.ProfileResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Router       /users/me [patch]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.CurrentUser(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if !h.BindJSON(c, &req) {
		return
	}

	profile, err := h.userService.UpdateProfile(c.Request.Context(), identity.UpdateProfileInput{
		UserID:   userID,
		Name:     req.Name,
		Image:    req.Image,
		Phone:    req.Phone,
		Location: req.Location,
		Bio:      req.Bio,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}
