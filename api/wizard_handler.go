package api

import (
	"errors"
	"net/http"

	"api_dealership/internal/catalog"
	"api_dealership/internal/notify"
	"api_dealership/internal/sales"
	"api_dealership/internal/wizard"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// wizardHandler exposes the sale wizard of the calling user.
type wizardHandler struct {
	registry     *wizard.Registry
	salesService *sales.Service
	logger       *zap.Logger
}

// vehicleOption is a Step1 vehicle with the text shown in the picker.
type vehicleOption struct {
	catalog.Vehicle
	Label string `json:"label"`
}

type wizardResponse struct {
	State         wizard.State          `json:"state"`
	Clients       []catalog.Client      `json:"clients,omitempty"`
	Vehicles      []vehicleOption       `json:"vehicles,omitempty"`
	Sale          *sales.Sale           `json:"sale,omitempty"`
	Notifications []notify.Notification `json:"notifications"`
}

func (h *wizardHandler) respond(ctx *gin.Context, code int, s *wizard.Session, sale *sales.Sale) {
	res := wizardResponse{State: s.State(), Sale: sale, Notifications: s.Notifications()}
	if res.Notifications == nil {
		res.Notifications = []notify.Notification{}
	}
	if res.State.Open && res.State.Step == wizard.StepSelectParties {
		c := ctx.Request.Context()
		clients, err := s.ClientOptions(c, ctx.Query("client_q"))
		if err != nil {
			h.logger.Error("failed to list client options", zap.Error(err))
		}
		vehicles, err := s.VehicleOptions(c, ctx.Query("vehicle_q"))
		if err != nil {
			h.logger.Error("failed to list vehicle options", zap.Error(err))
		}
		res.Clients = clients
		for _, v := range vehicles {
			res.Vehicles = append(res.Vehicles, vehicleOption{Vehicle: v, Label: v.Label()})
		}
	}
	ctx.JSON(code, res)
}

func (h *wizardHandler) fail(ctx *gin.Context, s *wizard.Session, err error) {
	notes := []notify.Notification{}
	if s != nil {
		if n := s.Notifications(); n != nil {
			notes = n
		}
	}

	var ve *wizard.ValidationError
	switch {
	case errors.As(err, &ve):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": wizard.ErrIncomplete.Error(), "step": ve.Step, "fields": ve.Fields, "notifications": notes})
	case errors.Is(err, wizard.ErrNoWizard), errors.Is(err, wizard.ErrClosed):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrAlreadyOpen), errors.Is(err, wizard.ErrWrongStep), errors.Is(err, wizard.ErrNotMixed):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "notifications": notes})
	case errors.Is(err, sales.ErrStaleSelection):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "notifications": notes})
	case errors.Is(err, sales.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "notifications": notes})
	case errors.Is(err, sales.ErrInvalidDraft):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "notifications": notes})
	default:
		h.logger.Error("sale wizard failed", zap.String("user_id", userID(ctx)), zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "notifications": notes})
	}
}

// handleOpen handles POST /sale-wizard. An optional saleId opens the wizard on an existing sale.
func (h *wizardHandler) handleOpen(ctx *gin.Context) {
	var req struct {
		SaleID string `json:"saleId"`
	}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	var (
		s   *wizard.Session
		err error
	)
	if req.SaleID == "" {
		s, err = h.registry.Open(userID(ctx))
	} else {
		var sale *sales.Sale
		sale, err = h.salesService.GetSale(ctx.Request.Context(), req.SaleID)
		if err == nil {
			s, err = h.registry.OpenEdit(userID(ctx), *sale)
		}
	}
	if err != nil {
		h.fail(ctx, nil, err)
		return
	}
	h.respond(ctx, http.StatusCreated, s, nil)
}

// handleGet handles GET /sale-wizard.
func (h *wizardHandler) handleGet(ctx *gin.Context) {
	s, err := h.registry.Get(userID(ctx))
	if err != nil {
		h.fail(ctx, nil, err)
		return
	}
	h.respond(ctx, http.StatusOK, s, nil)
}

// handleUpdate handles PATCH /sale-wizard with the fields that changed.
// A rejected request leaves the form untouched.
func (h *wizardHandler) handleUpdate(ctx *gin.Context) {
	s, err := h.registry.Get(userID(ctx))
	if err != nil {
		h.fail(ctx, nil, err)
		return
	}

	var req wizard.Changes
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := s.Apply(req); err != nil {
		h.fail(ctx, s, err)
		return
	}
	h.respond(ctx, http.StatusOK, s, nil)
}

// handleNext handles POST /sale-wizard/next.
func (h *wizardHandler) handleNext(ctx *gin.Context) {
	s, err := h.registry.Get(userID(ctx))
	if err != nil {
		h.fail(ctx, nil, err)
		return
	}
	if err := s.Next(ctx.Request.Context()); err != nil {
		h.fail(ctx, s, err)
		return
	}
	h.respond(ctx, http.StatusOK, s, nil)
}

// handlePrev handles POST /sale-wizard/prev.
func (h *wizardHandler) handlePrev(ctx *gin.Context) {
	s, err := h.registry.Get(userID(ctx))
	if err != nil {
		h.fail(ctx, nil, err)
		return
	}
	if err := s.Prev(); err != nil {
		h.fail(ctx, s, err)
		return
	}
	h.respond(ctx, http.StatusOK, s, nil)
}

// handleCommit handles POST /sale-wizard/commit.
func (h *wizardHandler) handleCommit(ctx *gin.Context) {
	s, err := h.registry.Get(userID(ctx))
	if err != nil {
		h.fail(ctx, nil, err)
		return
	}
	sale, err := s.Commit(ctx.Request.Context())
	if err != nil {
		h.fail(ctx, s, err)
		return
	}
	h.respond(ctx, http.StatusCreated, s, sale)
}

// handleCancel handles DELETE /sale-wizard.
func (h *wizardHandler) handleCancel(ctx *gin.Context) {
	if !h.registry.Cancel(userID(ctx)) {
		h.fail(ctx, nil, wizard.ErrNoWizard)
		return
	}
	ctx.Status(http.StatusNoContent)
}
