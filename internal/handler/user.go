package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skill_swap/internal/service"
	"skill_swap/pkg/logger"
)

type UserHandler struct {
	userService   service.UserService
	ratingService service.RatingService
	log           logger.Logger
}

func NewUserHandler(userService service.UserService, ratingService service.RatingService, log logger.Logger) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ratingService: ratingService,
		log:           log,
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	user, err := h.userService.UpdateMe(c.Request.Context(), userID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	profile, err := h.userService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	// email виден только владельцу
	profile.Email = ""
	c.JSON(http.StatusOK, profile)
}

func (h *UserHandler) GetRatings(c *gin.Context) {
	userID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	ratings, err := h.ratingService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ratings)
}
