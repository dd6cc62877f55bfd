package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wekeza/wekeza_backend/internal/apperrors"
	portssvc "github.com/wekeza/wekeza_backend/internal/core/ports/services"
	"github.com/wekeza/wekeza_backend/internal/dto"
	"github.com/wekeza/wekeza_backend/internal/middleware"
)

// receivableHandler handles HTTP requests for receivable postings and their
// safe delete/restore lifecycle.
type receivableHandler struct {
	postingService    portssvc.PostingSvcFacade
	receivableService portssvc.ReceivableSvcFacade
}

func newReceivableHandler(ps portssvc.PostingSvcFacade, rs portssvc.ReceivableSvcFacade) *receivableHandler {
	return &receivableHandler{
		postingService:    ps,
		receivableService: rs,
	}
}

// registerReceivableRoutes registers routes for receivables.
func registerReceivableRoutes(rg *gin.RouterGroup, ps portssvc.PostingSvcFacade, rs portssvc.ReceivableSvcFacade) {
	h := newReceivableHandler(ps, rs)

	receivables := rg.Group("/receivables")
	{
		receivables.POST("", h.createReceivable)
		receivables.GET("/:receivableID", h.getReceivable)
		receivables.DELETE("/:receivableID", h.deleteReceivable)
		receivables.POST("/:receivableID/restore", h.restoreReceivable)
	}
	rg.GET("/users/:userID/receivables", h.listReceivables)
}

func (h *receivableHandler) createReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateReceivableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createReceivable", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actor := middleware.GetActorID(c)
	receivable, err := h.postingService.PostReceivable(c.Request.Context(), req, actor)
	if err != nil {
		respondPostingError(c, logger, err, "Failed to post receivable")
		return
	}

	logger.Info("Receivable posted", slog.String("receivable_id", receivable.ReceivableID))
	c.JSON(http.StatusCreated, dto.ToReceivableResponse(receivable))
}

func (h *receivableHandler) getReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receivableID := c.Param("receivableID")

	receivable, err := h.receivableService.GetReceivableByID(c.Request.Context(), receivableID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Receivable not found"})
			return
		}
		logger.Error("Failed to fetch receivable", slog.String("receivable_id", receivableID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch receivable"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReceivableResponse(receivable))
}

func (h *receivableHandler) listReceivables(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID := c.Param("userID")

	var params dto.ListReceivablesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.receivableService.ListReceivablesByUser(c.Request.Context(), userID, params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.Error("Failed to list receivables", slog.String("user_id", userID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list receivables"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *receivableHandler) deleteReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receivableID := c.Param("receivableID")
	actor := middleware.GetActorID(c)

	if err := h.receivableService.SafeDelete(c.Request.Context(), receivableID, actor); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Receivable not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to safely delete receivable", slog.String("receivable_id", receivableID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete receivable"})
		}
		return
	}

	logger.Info("Receivable deleted", slog.String("receivable_id", receivableID), slog.String("actor", actor))
	c.Status(http.StatusNoContent)
}

func (h *receivableHandler) restoreReceivable(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	receivableID := c.Param("receivableID")
	actor := middleware.GetActorID(c)

	if err := h.receivableService.SafeRestore(c.Request.Context(), receivableID, actor); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Receivable not found"})
		case errors.Is(err, apperrors.ErrConflict):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to restore receivable", slog.String("receivable_id", receivableID), slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to restore receivable"})
		}
		return
	}

	logger.Info("Receivable restored", slog.String("receivable_id", receivableID), slog.String("actor", actor))
	c.Status(http.StatusNoContent)
}

// respondPostingError maps posting pipeline errors onto HTTP statuses shared by
// the receivable and contribution handlers.
func respondPostingError(c *gin.Context, logger *slog.Logger, err error, logMsg string) {
	switch {
	case errors.Is(err, apperrors.ErrInsufficientFunds):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		logger.Warn(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error(logMsg, slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
