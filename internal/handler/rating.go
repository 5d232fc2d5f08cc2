package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skill_swap/internal/service"
	"skill_swap/pkg/logger"
)

type RatingHandler struct {
	ratingService service.RatingService
	log           logger.Logger
}

func NewRatingHandler(ratingService service.RatingService, log logger.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		log:           log,
	}
}

func (h *RatingHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CreateRatingRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	rating, err := h.ratingService.Create(c.Request.Context(), userID, req.parsed)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, rating)
}
