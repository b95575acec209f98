package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cashbookhq/cashbook-bot/internal/core/ports/repositories"
	portssvc "github.com/cashbookhq/cashbook-bot/internal/core/ports/services"
	"github.com/cashbookhq/cashbook-bot/internal/dto"
	"github.com/cashbookhq/cashbook-bot/internal/middleware"
)

// opsHandler handles operator requests: reconciliation runs, sheet ingest and
// store statistics.
type opsHandler struct {
	reconcile  portssvc.ReconcileSvcFacade
	mirror     portssvc.MirrorSvcFacade
	metadata   portssvc.MetadataSvcFacade
	recordRepo repositories.RecordRepositoryFacade
}

func newOpsHandler(services *portssvc.ServiceContainer, repos *repositories.RepositoryProvider) *opsHandler {
	return &opsHandler{
		reconcile:  services.Reconcile,
		mirror:     services.Mirror,
		metadata:   services.Metadata,
		recordRepo: repos.RecordRepo,
	}
}

func registerOpsRoutes(r *gin.Engine, services *portssvc.ServiceContainer, repos *repositories.RepositoryProvider) {
	h := newOpsHandler(services, repos)

	ops := r.Group("/ops")
	{
		ops.POST("/reconcile", h.reconcilePayments)
		ops.POST("/initialize", h.initializeRecords)
		ops.GET("/stats", h.stats)
		ops.POST("/cache/invalidate", h.invalidateCache)
	}
}

func (h *opsHandler) reconcilePayments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to reconcile payments")

	stats, err := h.reconcile.ReconcilePayments(c.Request.Context())
	if err != nil {
		logger.Error("Payment reconciliation failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation failed"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReconcileResponse(stats))
}

func (h *opsHandler) initializeRecords(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.InitializeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Warn("Failed to bind JSON for InitializeRecords", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
			return
		}
	}
	logger.Info("Received request to initialize records", slog.String("spreadsheet_id", req.SpreadsheetID))

	stats, err := h.reconcile.InitializeRecords(c.Request.Context(), req.SpreadsheetID)
	if err != nil {
		logger.Error("Record initialization failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Initialization failed"})
		return
	}
	c.JSON(http.StatusOK, dto.ToReconcileResponse(stats))
}

func (h *opsHandler) stats(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	count, err := h.recordRepo.CountRecords(c.Request.Context())
	if err != nil {
		logger.Error("Failed to count records", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
		return
	}

	resp := dto.StatsResponse{
		Records:          count,
		MirrorQueueDepth: h.mirror.QueueDepth(),
	}

	spreadsheetID := c.Query("spreadsheetID")
	sheetName := c.Query("sheetName")
	if spreadsheetID != "" && sheetName != "" {
		totals, err := h.recordRepo.SupplierTotals(c.Request.Context(), spreadsheetID, sheetName)
		if err != nil {
			logger.Error("Failed to compute supplier totals", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to collect stats"})
			return
		}
		resp.SupplierTotals = totals
	}

	c.JSON(http.StatusOK, resp)
}

// invalidateCache drops cached sheet metadata, for one spreadsheet or all of
// it, so the next lookup refetches.
func (h *opsHandler) invalidateCache(c *gin.Context) {
	spreadsheetID := c.Query("spreadsheetID")
	if spreadsheetID == "" {
		h.metadata.InvalidateAll()
	} else {
		h.metadata.Invalidate(spreadsheetID)
	}
	c.Status(http.StatusNoContent)
}
