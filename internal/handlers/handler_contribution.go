package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/middleware"
)

// contributionHandler handles HTTP requests for contribution postings and
// payable shortfall assessment.
type contributionHandler struct {
	postingService portssvc.PostingSvcFacade
}

func newContributionHandler(ps portssvc.PostingSvcFacade) *contributionHandler {
	return &contributionHandler{postingService: ps}
}

// registerContributionRoutes registers routes for contributions.
func registerContributionRoutes(rg *gin.RouterGroup, ps portssvc.PostingSvcFacade) {
	h := newContributionHandler(ps)

	rg.POST("/contributions", h.createContribution)
	rg.POST("/accounts/:accountID/users/:userID/assess", h.assessShortfall)
}

func (h *contributionHandler) createContribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateContributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createContribution", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorID(c)
	contribution, err := h.postingService.PostContribution(c.Request.Context(), req, actor)
	if err != nil {
		respondPostingError(c, logger, err, "Failed to post contribution")
		return
	}

	logger.Info("Contribution posted", slog.String("receivable_id", contribution.ReceivableID))
	c.JSON(http.StatusCreated, dto.ToReceivableResponse(contribution))
}

func (h *contributionHandler) assessShortfall(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")
	userID := c.Param("userID")
	actor := middleware.GetActorID(c)

	debt, err := h.postingService.AssessPayableShortfall(c.Request.Context(), userID, accountID, actor)
	if err != nil {
		respondPostingError(c, logger, err, "Failed to assess payable shortfall")
		return
	}

	if debt == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Payable fully covered, no debt assessed"})
		return
	}

	logger.Info("Shortfall assessed",
		slog.String("user_id", userID),
		slog.String("account_id", accountID),
		slog.String("debt_id", debt.DebtID),
	)
	c.JSON(http.StatusCreated, gin.H{
		"debtID":             debt.DebtID,
		"userID":             debt.UserID,
		"outstandingBalance": debt.OutstandingBalance,
		"debtStatus":         debt.DebtStatus,
	})
}
