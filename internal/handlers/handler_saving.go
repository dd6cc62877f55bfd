package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/middleware"
)

// savingHandler exposes read access to the savings ledger.
type savingHandler struct {
	savingService portssvc.SavingSvcFacade
}

func newSavingHandler(ss portssvc.SavingSvcFacade) *savingHandler {
	return &savingHandler{savingService: ss}
}

// registerSavingRoutes registers the savings read routes.
func registerSavingRoutes(rg *gin.RouterGroup, ss portssvc.SavingSvcFacade) {
	h := newSavingHandler(ss)
	rg.GET("/users/:userID/savings/current", h.getCurrentSavings)
}

func (h *savingHandler) getCurrentSavings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	saving, err := h.savingService.GetCurrentSavings(c.Request.Context(), userID)
	if err != nil {
		logger.Error("Failed to fetch current savings", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch current savings"})
		return
	}
	c.JSON(http.StatusOK, dto.ToSavingResponse(saving))
}
