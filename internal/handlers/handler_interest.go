package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/middleware"
)

// interestHandler exposes a manual trigger for the monthly interest engine.
type interestHandler struct {
	interestService portssvc.InterestSvcFacade
}

func newInterestHandler(is portssvc.InterestSvcFacade) *interestHandler {
	return &interestHandler{interestService: is}
}

// registerInterestRoutes registers the interest run trigger.
func registerInterestRoutes(rg *gin.RouterGroup, is portssvc.InterestSvcFacade) {
	h := newInterestHandler(is)
	rg.POST("/interest/run", h.runInterest)
}

func (h *interestHandler) runInterest(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	actor := middleware.GetActorID(c)

	run, err := h.interestService.ApplyMonthlyInterest(c.Request.Context(), actor)
	if err != nil {
		logger.Error("Interest run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Interest run failed"})
		return
	}

	c.JSON(http.StatusOK, dto.ToInterestRunResponse(run))
}
