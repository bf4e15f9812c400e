package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/account-api/internal/handler/dto"
	apperrors "github.com/yourusername/account-api/internal/pkg/errors"
	"github.com/yourusername/account-api/internal/service"
)

// UserHandler обрабатывает запросы профиля пользователя
type UserHandler struct {
	authService *service.AuthService
}

func NewUserHandler(authService *service.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

// UpdateProfileRequest представляет запрос на обновление профиля.
// Отсутствующие в JSON поля не изменяются.
type UpdateProfileRequest struct {
	FullName    *string `json:"full_name" binding:"omitempty,max=255"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=255"`
	WebsiteURL  *string `json:"website_url" binding:"omitempty,max=500"`
	AvatarURL   *string `json:"avatar_url" binding:"omitempty,max=500"`
}

// GetMe возвращает профиль текущего пользователя
func (h *UserHandler) GetMe(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.authService.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found", "error_type": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "error_type": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewUserProfile(user))
}

// UpdateMe обновляет профиль текущего пользователя
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID := c.GetUint("user_id")

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "error_type": "invalid_request", "details": err.Error()})
		return
	}

	user, err := h.authService.UpdateUserProfile(userID, service.ProfileUpdateInput{
		FullName:    req.FullName,
		CompanyName: req.CompanyName,
		WebsiteURL:  req.WebsiteURL,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile", "error_type": "internal_server_error"})
		return
	}

	c.JSON(http.StatusOK, dto.NewUserProfile(user))
}

// ListUsers возвращает пользователей постранично (только для администраторов)
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	users, total, err := h.authService.ListUsers(perPage, (page-1)*perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list users", "error_type": "internal_server_error"})
		return
	}

	out := make([]*dto.UserProfile, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserProfile(&users[i]))
	}

	c.JSON(http.StatusOK, dto.PaginatedUsersResponse{
		Users:   out,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	})
}
