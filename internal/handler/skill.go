package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skill_swap/internal/domain"
	"skill_swap/internal/service"
	"skill_swap/pkg/logger"
)

type SkillHandler struct {
	skillService service.SkillService
	log          logger.Logger
}

func NewSkillHandler(skillService service.SkillService, log logger.Logger) *SkillHandler {
	return &SkillHandler{
		skillService: skillService,
		log:          log,
	}
}

func (h *SkillHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req SkillRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	skill, err := h.skillService.Create(c.Request.Context(), userID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, skill)
}

// List - лента активных навыков, ?category= и ?search= необязательны
func (h *SkillHandler) List(c *gin.Context) {
	skills, err := h.skillService.List(c.Request.Context(), domain.SkillFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

func (h *SkillHandler) ListByUser(c *gin.Context) {
	userID, err := paramUUID(c, "userId")
	if err != nil {
		_ = c.Error(err)
		return
	}

	skills, err := h.skillService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, skills)
}

func (h *SkillHandler) Update(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	skillID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req SkillRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	skill, err := h.skillService.Update(c.Request.Context(), skillID, userID, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, skill)
}

func (h *SkillHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	skillID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := h.skillService.Delete(c.Request.Context(), skillID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}
