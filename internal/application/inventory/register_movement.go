package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/Materiales-api/internal/domain"
	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
	"github.com/jhoicas/Materiales-api/pkg/telemetry"
)

// RegistrarConfig parámetros del registrador.
type RegistrarConfig struct {
	// MaxAttempts intentos totales ante ConcurrencyConflictError (mínimo 1).
	MaxAttempts uint
	// RetryInitialInterval espera inicial entre reintentos.
	RetryInitialInterval time.Duration
}

// RegisterMovementUseCase es el único camino para crear movimientos del ledger.
// Lee el stock del par con bloqueo (SELECT FOR UPDATE), valida, agrega el movimiento
// y actualiza la proyección en la misma transacción.
type RegisterMovementUseCase struct {
	txRunner      TxRunner
	materialRepo  repository.MaterialRepository
	warehouseRepo repository.WarehouseRepository
	observer      StockObserver
	log           zerolog.Logger
	cfg           RegistrarConfig
	now           func() time.Time

	tracer     trace.Tracer
	registered metric.Int64Counter
	rejected   metric.Int64Counter
	conflicts  metric.Int64Counter
}

// NewRegisterMovementUseCase construye el caso de uso. observer puede ser nil.
func NewRegisterMovementUseCase(
	txRunner TxRunner,
	materialRepo repository.MaterialRepository,
	warehouseRepo repository.WarehouseRepository,
	observer StockObserver,
	log zerolog.Logger,
	cfg RegistrarConfig,
) *RegisterMovementUseCase {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.RetryInitialInterval <= 0 {
		cfg.RetryInitialInterval = 20 * time.Millisecond
	}
	meter := otel.Meter(telemetry.ScopeName)
	return &RegisterMovementUseCase{
		txRunner:      txRunner,
		materialRepo:  materialRepo,
		warehouseRepo: warehouseRepo,
		observer:      observer,
		log:           log,
		cfg:           cfg,
		now:           time.Now,
		tracer:        otel.Tracer(telemetry.ScopeName),
		registered:    telemetry.Counter(meter, "inventory.movements.registered", "movimientos agregados al ledger"),
		rejected:      telemetry.Counter(meter, "inventory.movements.rejected", "movimientos rechazados"),
		conflicts:     telemetry.Counter(meter, "inventory.movements.conflicts", "conflictos de concurrencia"),
	}
}

// DeliveryInput entrada de RegisterDelivery (entrega a obra/trabajador).
type DeliveryInput struct {
	MaterialID  string
	WarehouseID string
	Quantity    decimal.Decimal
	ProjectID   string
	WorkerID    string
	Actor       string // delivered_by
	Reason      string
	Notes       string
	UnitCost    *decimal.Decimal
	OccurredAt  *time.Time // retrofechado para correcciones históricas
}

// AdjustmentInput entrada de RegisterAdjustment. Type debe ser ingreso o ajuste_negativo.
type AdjustmentInput struct {
	MaterialID  string
	WarehouseID string
	Type        entity.MovementType
	Quantity    decimal.Decimal
	Actor       string
	Reason      string
	Notes       string
	UnitCost    *decimal.Decimal
	OccurredAt  *time.Time
}

// movementRequest forma común de entregas y ajustes.
type movementRequest struct {
	MaterialID  string
	WarehouseID string
	Type        entity.MovementType
	Quantity    decimal.Decimal
	ProjectID   string
	WorkerID    string
	Actor       string
	Reason      string
	Notes       string
	UnitCost    *decimal.Decimal
	OccurredAt  *time.Time
}

// RegisterDelivery registra una entrega. Falla con *domain.InsufficientStockError si
// la cantidad supera el stock actual del par.
func (uc *RegisterMovementUseCase) RegisterDelivery(ctx context.Context, in DeliveryInput) (*entity.Movement, error) {
	return uc.register(ctx, movementRequest{
		MaterialID:  in.MaterialID,
		WarehouseID: in.WarehouseID,
		Type:        entity.MovementEntrega,
		Quantity:    in.Quantity,
		ProjectID:   in.ProjectID,
		WorkerID:    in.WorkerID,
		Actor:       in.Actor,
		Reason:      in.Reason,
		Notes:       in.Notes,
		UnitCost:    in.UnitCost,
		OccurredAt:  in.OccurredAt,
	})
}

// RegisterAdjustment registra un ingreso o un ajuste negativo.
func (uc *RegisterMovementUseCase) RegisterAdjustment(ctx context.Context, in AdjustmentInput) (*entity.Movement, error) {
	if !in.Type.IsAdjustment() {
		uc.reject(ctx, "validation")
		return nil, domain.NewValidationError("movement_type", "un ajuste solo puede ser ingreso o ajuste_negativo")
	}
	return uc.register(ctx, movementRequest{
		MaterialID:  in.MaterialID,
		WarehouseID: in.WarehouseID,
		Type:        in.Type,
		Quantity:    in.Quantity,
		Actor:       in.Actor,
		Reason:      in.Reason,
		Notes:       in.Notes,
		UnitCost:    in.UnitCost,
		OccurredAt:  in.OccurredAt,
	})
}

func (uc *RegisterMovementUseCase) register(ctx context.Context, req movementRequest) (*entity.Movement, error) {
	// Validación sin estado: no se lee nada si la entrada está mal formada.
	if err := uc.validate(req); err != nil {
		uc.reject(ctx, "validation")
		return nil, err
	}

	ctx, span := uc.tracer.Start(ctx, "inventory.register_movement", trace.WithAttributes(
		attribute.String("material_id", req.MaterialID),
		attribute.String("warehouse_id", req.WarehouseID),
		attribute.String("movement_type", req.Type.String()),
	))
	defer span.End()

	if err := uc.checkCatalog(ctx, req); err != nil {
		uc.reject(ctx, "catalog")
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = uc.cfg.RetryInitialInterval
	b.MaxInterval = 20 * uc.cfg.RetryInitialInterval

	var material *entity.Material
	attempt := 0
	mov, err := backoff.Retry(ctx, func() (*entity.Movement, error) {
		attempt++
		mov, locked, err := uc.appendInTx(ctx, req)
		if err == nil {
			material = locked
			return mov, nil
		}
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			uc.conflicts.Add(ctx, 1)
			uc.log.Warn().Err(err).
				Int("attempt", attempt).
				Str("material_id", req.MaterialID).
				Str("warehouse_id", req.WarehouseID).
				Msg("conflicto al registrar movimiento")
			return nil, err
		}
		return nil, backoff.Permanent(err)
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uc.cfg.MaxAttempts))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			uc.reject(ctx, "insufficient_stock")
		case errors.Is(err, domain.ErrConcurrencyConflict):
			uc.reject(ctx, "conflict")
		case errors.Is(err, domain.ErrInvalidInput):
			uc.reject(ctx, "catalog")
		default:
			uc.reject(ctx, "error")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("movement_id", mov.ID), attribute.String("stock_after", mov.StockAfter.String()))
	uc.registered.Add(ctx, 1, metric.WithAttributes(attribute.String("movement_type", mov.Type.String())))

	// La alerta va después del commit: el movimiento ya es un hecho durable.
	if uc.observer != nil {
		uc.observer.Dispatch(ctx, mov, material)
	}
	return mov, nil
}

// validate aplica las reglas de cada tipo antes de tocar estado.
func (uc *RegisterMovementUseCase) validate(req movementRequest) error {
	if req.MaterialID == "" {
		return domain.NewValidationError("material_id", "es requerido")
	}
	if req.WarehouseID == "" {
		return domain.NewValidationError("warehouse_id", "es requerido")
	}
	if req.Actor == "" {
		return domain.NewValidationError("delivered_by", "el usuario que registra es requerido")
	}
	if !req.Quantity.IsPositive() {
		return domain.NewValidationError("quantity", "debe ser mayor que cero")
	}
	if !entity.FitsScale(req.Quantity) {
		return domain.NewValidationError("quantity", "máximo 4 decimales")
	}
	if req.UnitCost != nil {
		if req.UnitCost.IsNegative() {
			return domain.NewValidationError("unit_cost", "no puede ser negativo")
		}
		if !entity.FitsScale(*req.UnitCost) {
			return domain.NewValidationError("unit_cost", "máximo 4 decimales")
		}
	}
	if req.OccurredAt != nil && req.OccurredAt.After(uc.now().Add(5*time.Minute)) {
		return domain.NewValidationError("occurred_at", "no puede estar en el futuro")
	}

	switch req.Type {
	case entity.MovementEntrega:
		// Proyecto y trabajador son opcionales; el actor ya se validó.
	case entity.MovementIngreso, entity.MovementAjusteNegativo:
		if req.ProjectID != "" || req.WorkerID != "" {
			return domain.NewValidationError("project_id", "solo aplica a entregas")
		}
	default:
		return domain.NewValidationError("movement_type", "tipo de movimiento inválido")
	}
	return nil
}

// checkCatalog valida que material y bodega existan y estén activos antes de abrir la
// transacción. appendInTx lo repite con las filas bloqueadas.
func (uc *RegisterMovementUseCase) checkCatalog(ctx context.Context, req movementRequest) error {
	material, err := uc.materialRepo.GetByID(ctx, req.MaterialID)
	if err != nil {
		return err
	}
	if material == nil || !material.Active {
		return errUnknownMaterial()
	}
	wh, err := uc.warehouseRepo.GetByID(ctx, req.WarehouseID)
	if err != nil {
		return err
	}
	return requireActive(material, wh)
}

func errUnknownMaterial() error {
	return domain.NewValidationError("material_id", "material desconocido o inactivo")
}

func requireActive(material *entity.Material, wh *entity.Warehouse) error {
	if material == nil || !material.Active {
		return errUnknownMaterial()
	}
	if wh == nil || !wh.Active {
		return domain.NewValidationError("warehouse_id", "bodega desconocida o inactiva")
	}
	return nil
}

// appendInTx bloquea catálogo y par, calcula before/after y agrega el movimiento junto con
// la proyección. Devuelve también el material leído bajo bloqueo (costo y mínimo vigentes).
func (uc *RegisterMovementUseCase) appendInTx(ctx context.Context, req movementRequest) (*entity.Movement, *entity.Material, error) {
	var (
		out      *entity.Movement
		material *entity.Material
	)
	err := uc.txRunner.Run(ctx, func(
		movRepo repository.MovementRepository,
		stockRepo repository.StockRepository,
	) error {
		mat, wh, err := stockRepo.LockCatalog(ctx, req.MaterialID, req.WarehouseID)
		if err != nil {
			return err
		}
		if err := requireActive(mat, wh); err != nil {
			return err
		}
		material = mat

		level, err := stockRepo.GetForUpdate(ctx, req.MaterialID, req.WarehouseID)
		if err != nil {
			return err
		}
		before := level.Quantity
		after := req.Type.Apply(before, req.Quantity)
		if after.IsNegative() {
			return &domain.InsufficientStockError{
				MaterialID:  req.MaterialID,
				WarehouseID: req.WarehouseID,
				Requested:   req.Quantity,
				Available:   before,
			}
		}

		now := uc.now()
		createdAt := now
		if req.OccurredAt != nil {
			createdAt = *req.OccurredAt
		}
		unitCost := material.UnitCost
		if req.UnitCost != nil {
			unitCost = *req.UnitCost
		}

		mov := &entity.Movement{
			MaterialID:  req.MaterialID,
			WarehouseID: req.WarehouseID,
			Type:        req.Type,
			Quantity:    req.Quantity,
			StockBefore: before,
			StockAfter:  after,
			ProjectID:   req.ProjectID,
			WorkerID:    req.WorkerID,
			DeliveredBy: req.Actor,
			Reason:      req.Reason,
			Notes:       req.Notes,
			UnitCost:    unitCost,
			TotalCost:   req.Quantity.Mul(unitCost).Round(entity.DecimalPlaces),
			CreatedAt:   createdAt,
			RecordedAt:  now,
		}
		id, err := movRepo.Append(ctx, mov)
		if err != nil {
			return err
		}
		mov.ID = id

		level.Quantity = after
		level.LastMovementID = id
		level.UpdatedAt = now
		if err := stockRepo.Upsert(ctx, level); err != nil {
			return err
		}
		out = mov
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return out, material, nil
}

func (uc *RegisterMovementUseCase) reject(ctx context.Context, reason string) {
	uc.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
