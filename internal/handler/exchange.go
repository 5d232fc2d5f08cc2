package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skill_swap/internal/service"
	"skill_swap/pkg/logger"
)

type ExchangeHandler struct {
	exchangeService service.ExchangeService
	log             logger.Logger
}

func NewExchangeHandler(exchangeService service.ExchangeService, log logger.Logger) *ExchangeHandler {
	return &ExchangeHandler{
		exchangeService: exchangeService,
		log:             log,
	}
}

func (h *ExchangeHandler) Propose(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req ProposeExchangeRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	exchange, err := h.exchangeService.Propose(c.Request.Context(), userID, req.parsed)
	if err != nil {
		_ = c.Error(err)
		return
	}

	h.log.Info("Exchange proposed", "exchange_id", exchange.ID, "requester_id", userID)
	c.JSON(http.StatusCreated, exchange)
}

func (h *ExchangeHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	exchanges, err := h.exchangeService.ListForUser(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, exchanges)
}

func (h *ExchangeHandler) UpdateStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	exchangeID, err := paramUUID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req UpdateExchangeStatusRequest
	if err := bindJSON(c, &req); err != nil {
		_ = c.Error(err)
		return
	}

	exchange, err := h.exchangeService.UpdateStatus(c.Request.Context(), exchangeID, userID, req.Status)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, exchange)
}
