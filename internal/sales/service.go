package sales

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"api_dealership/internal/catalog"
	"api_dealership/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Error para transiciones inválidas
var ErrInvalidTransition = errors.New("invalid status transition")

// Error para estados inválidos
var ErrInvalidStatus = errors.New("invalid status value")

// ErrStaleSelection is returned when the chosen vehicle is no longer
// available by the time the sale is committed.
var ErrStaleSelection = errors.New("selected vehicle is no longer available")

// ErrInvalidDraft is returned when a draft is missing required data.
var ErrInvalidDraft = errors.New("invalid sale data")

// Draft carries the data needed to create or edit a sale.
type Draft struct {
	ClientID    string
	VehicleID   string
	TotalPrice  decimal.Decimal
	Payment     Payment
	Salesperson string
}

func (d Draft) validate() error {
	var missing []string
	if d.ClientID == "" {
		missing = append(missing, "client")
	}
	if d.VehicleID == "" {
		missing = append(missing, "vehicle")
	}
	if strings.TrimSpace(d.Salesperson) == "" {
		missing = append(missing, "salesperson")
	}
	if d.Payment == nil {
		missing = append(missing, "payment")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidDraft, strings.Join(missing, ", "))
	}
	if d.TotalPrice.IsNegative() {
		return fmt.Errorf("%w: negative total price", ErrInvalidDraft)
	}
	if err := d.Payment.validate(d.TotalPrice); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDraft, err)
	}
	return nil
}

// Service provides high-level sales management operations on a UnitOfWork backend.
type Service struct {
	store   UnitOfWork
	logger  *zap.Logger
	now     func() time.Time
	numbers *numberSeries
}

// NewService creates a new Service.
func NewService(store UnitOfWork, logger *zap.Logger) *Service {
	if logger == nil {
		logger, _ = zap.NewProduction()
	}

	return &Service{
		store:   store,
		logger:  logger,
		now:     time.Now,
		numbers: &numberSeries{},
	}
}

// Repositories exposes the read side of the underlying store.
func (s *Service) Repositories() Repositories {
	return s.store.Repositories()
}

// CreateSale records a new pending sale and marks its vehicle as sold to the
// client. Both changes happen in one unit of work.
func (s *Service) CreateSale(ctx context.Context, d Draft) (*Sale, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	sale := Sale{
		ID:          uuid.NewString(),
		SaleNumber:  s.numbers.next(now),
		ClientID:    d.ClientID,
		VehicleID:   d.VehicleID,
		TotalPrice:  d.TotalPrice,
		Payment:     d.Payment,
		Salesperson: strings.TrimSpace(d.Salesperson),
		SaleDate:    now,
		Status:      StatusPending,
	}

	err := s.store.Transact(ctx, func(r Repositories) error {
		v, err := claimVehicle(ctx, r.Vehicles, d.VehicleID)
		if err != nil {
			return err
		}
		if err := r.Sales.Create(ctx, &sale); err != nil {
			return fmt.Errorf("failed to save sale: %w", err)
		}
		v.SellTo(d.ClientID)
		if err := r.Vehicles.Update(ctx, v); err != nil {
			return fmt.Errorf("failed to update vehicle: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create sale", zap.String("vehicle_id", d.VehicleID), zap.String("client_id", d.ClientID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale created", zap.String("sale_id", sale.ID), zap.String("sale_number", sale.SaleNumber), zap.Any("sale", sale))
	return &sale, nil
}

// UpdateSale merges d into the sale identified by id.
// Switching vehicles releases the old one and claims the new one in the same
// unit of work; the total price is taken from d as-is.
func (s *Service) UpdateSale(ctx context.Context, id string, d Draft) (*Sale, error) {
	if err := d.validate(); err != nil {
		return nil, err
	}

	var updated Sale
	err := s.store.Transact(ctx, func(r Repositories) error {
		existing, err := r.Sales.Get(ctx, id)
		if err != nil {
			return err
		}

		if d.VehicleID != existing.VehicleID {
			if err := releaseVehicle(ctx, r.Vehicles, existing.VehicleID); err != nil {
				return err
			}
			v, err := claimVehicle(ctx, r.Vehicles, d.VehicleID)
			if err != nil {
				return err
			}
			v.SellTo(d.ClientID)
			if err := r.Vehicles.Update(ctx, v); err != nil {
				return fmt.Errorf("failed to update vehicle: %w", err)
			}
		} else if d.ClientID != existing.ClientID {
			if err := rebindVehicle(ctx, r.Vehicles, d.VehicleID, d.ClientID); err != nil {
				return err
			}
		}

		existing.ClientID = d.ClientID
		existing.VehicleID = d.VehicleID
		existing.TotalPrice = d.TotalPrice
		existing.Payment = d.Payment
		existing.Salesperson = strings.TrimSpace(d.Salesperson)
		if err := r.Sales.Update(ctx, existing); err != nil {
			return fmt.Errorf("failed to update sale: %w", err)
		}
		updated = existing
		return nil
	})
	if err != nil {
		s.logger.Error("failed to update sale", zap.String("sale_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale updated", zap.String("sale_id", id))
	return &updated, nil
}

// DeleteSale removes a sale and puts its vehicle back in stock.
func (s *Service) DeleteSale(ctx context.Context, id string) error {
	err := s.store.Transact(ctx, func(r Repositories) error {
		sale, err := r.Sales.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := releaseVehicle(ctx, r.Vehicles, sale.VehicleID); err != nil {
			return err
		}
		return r.Sales.Delete(ctx, id)
	})
	if err != nil {
		s.logger.Error("failed to delete sale", zap.String("sale_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("sale deleted", zap.String("sale_id", id))
	return nil
}

// DeleteWithConfirmation asks c before deleting the sale.
// It reports whether the user confirmed.
func (s *Service) DeleteWithConfirmation(ctx context.Context, id string, c notify.Confirmer) (bool, error) {
	sale, err := s.GetSale(ctx, id)
	if err != nil {
		return false, err
	}

	var (
		confirmed bool
		delErr    error
	)
	c.Confirm("Eliminar venta",
		fmt.Sprintf("¿Está seguro de eliminar la venta %s? El vehículo volverá a estar disponible.", sale.SaleNumber),
		func() {
			confirmed = true
			delErr = s.DeleteSale(ctx, id)
		})
	return confirmed, delErr
}

// GetSale returns the sale identified by id.
func (s *Service) GetSale(ctx context.Context, id string) (*Sale, error) {
	sale, err := s.store.Repositories().Sales.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

// SearchSales lists sales filtered by client and status, with summary metadata.
func (s *Service) SearchSales(ctx context.Context, clientID, status string) ([]Sale, SalesMetadata, error) {
	// 1. Validar el status
	parsedStatus := Status(status)
	if status != "" && !ValidStatus(parsedStatus) {
		s.logger.Warn("Invalid status filter provided", zap.String("statusFilter", status))
		return nil, SalesMetadata{}, fmt.Errorf("%w: '%s'", ErrInvalidStatus, status)
	}

	// 2. Obtener las ventas del storage
	found, err := s.store.Repositories().Sales.List(ctx, SaleFilter{ClientID: clientID, Status: parsedStatus})
	if err != nil {
		s.logger.Error("Failed to get sales from storage", zap.Error(err))
		return nil, SalesMetadata{}, fmt.Errorf("failed to retrieve sales: %w", err)
	}

	// 3. Calcular metadatos
	metadata := SalesMetadata{TotalAmount: decimal.Zero}
	for _, sale := range found {
		metadata.Quantity++
		metadata.TotalAmount = metadata.TotalAmount.Add(sale.TotalPrice)
		switch sale.Status {
		case StatusPending:
			metadata.Pending++
		case StatusCompleted:
			metadata.Completed++
		case StatusCancelled:
			metadata.Cancelled++
		}
	}

	s.logger.Info("Sales search completed",
		zap.String("clientID_filter", clientID),
		zap.String("status_filter", status),
		zap.Int("results_count", len(found)),
		zap.Any("metadata", metadata),
	)

	return found, metadata, nil
}

// UpdateSaleStatus moves a pending sale to completed or cancelled.
func (s *Service) UpdateSaleStatus(ctx context.Context, saleID, newStatus string) (*Sale, error) {
	target := Status(newStatus)
	if !ValidStatus(target) {
		return nil, ErrInvalidStatus
	}

	var updated Sale
	err := s.store.Transact(ctx, func(r Repositories) error {
		sale, err := r.Sales.Get(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status != StatusPending || target == StatusPending {
			return ErrInvalidTransition
		}
		sale.Status = target
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}
		updated = sale
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidTransition) {
			s.logger.Error("failed to update sale", zap.String("sale_id", saleID), zap.Error(err))
		}
		return nil, err
	}

	return &updated, nil
}

// GenerateContract flags the sale contract as generated.
// Document rendering is handled outside this service.
func (s *Service) GenerateContract(ctx context.Context, saleID string) (*Sale, error) {
	var updated Sale
	err := s.store.Transact(ctx, func(r Repositories) error {
		sale, err := r.Sales.Get(ctx, saleID)
		if err != nil {
			return err
		}
		if sale.Status == StatusCancelled {
			return ErrInvalidTransition
		}
		sale.ContractGenerated = true
		if err := r.Sales.Update(ctx, sale); err != nil {
			return err
		}
		updated = sale
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("contract generated", zap.String("sale_id", saleID))
	return &updated, nil
}

func claimVehicle(ctx context.Context, vehicles catalog.VehicleRepository, id string) (catalog.Vehicle, error) {
	v, err := vehicles.GetForUpdate(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return catalog.Vehicle{}, fmt.Errorf("%w: vehicle %s does not exist", ErrStaleSelection, id)
	}
	if err != nil {
		return catalog.Vehicle{}, fmt.Errorf("failed to read vehicle: %w", err)
	}
	if !v.IsAvailable() {
		return catalog.Vehicle{}, fmt.Errorf("%w: vehicle %s is %s", ErrStaleSelection, id, v.Status)
	}
	return v, nil
}

// releaseVehicle puts a vehicle back in stock. A missing vehicle is not an
// error since references are advisory.
func releaseVehicle(ctx context.Context, vehicles catalog.VehicleRepository, id string) error {
	v, err := vehicles.GetForUpdate(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read vehicle: %w", err)
	}
	v.Release()
	if err := vehicles.Update(ctx, v); err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}
	return nil
}

func rebindVehicle(ctx context.Context, vehicles catalog.VehicleRepository, id, clientID string) error {
	v, err := vehicles.GetForUpdate(ctx, id)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read vehicle: %w", err)
	}
	if v.IsAvailable() {
		return nil
	}
	v.ClientID = clientID
	if err := vehicles.Update(ctx, v); err != nil {
		return fmt.Errorf("failed to update vehicle: %w", err)
	}
	return nil
}

// numberSeries hands out time-derived sale numbers that never repeat
// within the process, even for sales created in the same millisecond.
type numberSeries struct {
	mu   sync.Mutex
	last int64
}

func (n *numberSeries) next(now time.Time) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	ms := now.UnixMilli()
	if ms <= n.last {
		ms = n.last + 1
	}
	n.last = ms
	return fmt.Sprintf("VTA-%d", ms)
}
