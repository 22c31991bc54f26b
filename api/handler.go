package api

import (
	"errors"
	"net/http"

	"api_dealership/internal/catalog"
	"api_dealership/internal/notify"
	"api_dealership/internal/sales"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// salesHandler holds the sales service and implements HTTP handlers for sales operations.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

func writeSaleError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, sales.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "sale not found"})
	case errors.Is(err, sales.ErrInvalidStatus):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrInvalidTransition):
		ctx.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
	case errors.Is(err, sales.ErrStaleSelection):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, sales.ErrInvalidDraft):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// handlePatchSale handles PATCH /sales/:id (status changes).
func (h *salesHandler) handlePatchSale(ctx *gin.Context) {
	saleID := ctx.Param("id")
	var req struct {
		Status string `json:"status" binding:"required"`
	}

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	updated, err := h.salesService.UpdateSaleStatus(ctx.Request.Context(), saleID, req.Status)
	if err != nil {
		writeSaleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, updated)
}

// handleGetSale handles GET /sales/:id.
func (h *salesHandler) handleGetSale(ctx *gin.Context) {
	sale, err := h.salesService.GetSale(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeSaleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// handleSearchSales handles GET /sales.
func (h *salesHandler) handleSearchSales(ctx *gin.Context) {
	clientID := ctx.Query("client_id")
	status := ctx.Query("status")

	results, metadata, err := h.salesService.SearchSales(ctx.Request.Context(), clientID, status)
	if err != nil {
		h.logger.Error("Error searching sales",
			zap.String("clientID_filter", clientID),
			zap.String("status_filter", status),
			zap.Error(err),
		)
		if errors.Is(err, sales.ErrInvalidStatus) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search sales"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"results": results, "metadata": metadata})
}

// handleDeleteSale handles DELETE /sales/:id. The request is the confirmation.
func (h *salesHandler) handleDeleteSale(ctx *gin.Context) {
	saleID := ctx.Param("id")
	if _, err := h.salesService.DeleteWithConfirmation(ctx.Request.Context(), saleID, notify.AutoConfirm); err != nil {
		writeSaleError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// handleGenerateContract handles POST /sales/:id/contract.
func (h *salesHandler) handleGenerateContract(ctx *gin.Context) {
	sale, err := h.salesService.GenerateContract(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		writeSaleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, sale)
}

// catalogHandler serves the client and vehicle directories.
type catalogHandler struct {
	clients  catalog.ClientRepository
	vehicles catalog.VehicleRepository
	logger   *zap.Logger
}

func (h *catalogHandler) handleListClients(ctx *gin.Context) {
	status := catalog.ClientStatus(ctx.Query("status"))
	if status != "" && !catalog.ValidClientStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}
	list, err := h.clients.List(ctx.Request.Context(), catalog.ClientFilter{Status: status, Query: ctx.Query("q")})
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list clients"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": list})
}

func (h *catalogHandler) handleListVehicles(ctx *gin.Context) {
	status := catalog.VehicleStatus(ctx.Query("status"))
	if status != "" && !catalog.ValidVehicleStatus(status) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid status value"})
		return
	}
	list, err := h.vehicles.List(ctx.Request.Context(), catalog.VehicleFilter{Status: status, Query: ctx.Query("q")})
	if err != nil {
		h.logger.Error("failed to list vehicles", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list vehicles"})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"results": list})
}
