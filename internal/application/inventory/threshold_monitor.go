package inventory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/Materiales-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Materiales-api/internal/domain/inventory"
	"github.com/jhoicas/Materiales-api/internal/domain/repository"
	"github.com/jhoicas/Materiales-api/pkg/telemetry"
)

// MonitorConfig parámetros del monitor de umbrales.
type MonitorConfig struct {
	Async       bool          // despachar en segundo plano después del commit
	MaxParallel int           // envíos simultáneos por alerta
	Timeout     time.Duration // tiempo máximo del despacho asíncrono
}

// ThresholdMonitor compara el stock resultante con el mínimo del material y emite
// una alerta por cada usuario con rol elevado. Es best-effort: nunca falla el movimiento.
type ThresholdMonitor struct {
	users repository.UserRepository
	sink  NotificationSink
	log   zerolog.Logger
	cfg   MonitorConfig
	now   func() time.Time
	wg    sync.WaitGroup

	emitted  metric.Int64Counter
	failures metric.Int64Counter
}

var _ StockObserver = (*ThresholdMonitor)(nil)

// NewThresholdMonitor construye el monitor.
func NewThresholdMonitor(users repository.UserRepository, sink NotificationSink, log zerolog.Logger, cfg MonitorConfig) *ThresholdMonitor {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	meter := otel.Meter(telemetry.ScopeName)
	return &ThresholdMonitor{
		users:    users,
		sink:     sink,
		log:      log,
		cfg:      cfg,
		now:      time.Now,
		emitted:  telemetry.Counter(meter, "inventory.alerts.emitted", "alertas de stock emitidas"),
		failures: telemetry.Counter(meter, "inventory.alerts.failed", "alertas de stock no entregadas"),
	}
}

// Dispatch ejecuta Observe en línea o en segundo plano según la configuración.
// En modo asíncrono no usa el contexto de la petición (puede reciclarse), solo su traza.
func (m *ThresholdMonitor) Dispatch(ctx context.Context, movement *entity.Movement, material *entity.Material) {
	if _, ok := domaininv.Classify(movement.StockAfter, material.MinimumStock); !ok {
		return
	}
	if !m.cfg.Async {
		m.Observe(ctx, movement, material)
		return
	}
	spanCtx := trace.SpanContextFromContext(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer m.recoverPanic(ctx, "dispatch", movement.ID)
		bg, cancel := context.WithTimeout(trace.ContextWithSpanContext(context.Background(), spanCtx), m.cfg.Timeout)
		defer cancel()
		m.Observe(bg, movement, material)
	}()
}

// recoverPanic convierte un pánico del despacho en un fallo registrado.
func (m *ThresholdMonitor) recoverPanic(ctx context.Context, stage string, movementID int64) {
	if r := recover(); r != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", "panic")))
		m.log.Error().
			Str("stage", stage).
			Int64("movement_id", movementID).
			Interface("panic", r).
			Msg("pánico al despachar alerta de stock")
	}
}

// emit llama al sink; un pánico del sink se devuelve como error.
func (m *ThresholdMonitor) emit(ctx context.Context, alert entity.StockAlert) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pánico en sink de alertas: %v", r)
		}
	}()
	return m.sink.Emit(ctx, alert)
}

// Wait bloquea hasta que terminen los despachos asíncronos en curso.
func (m *ThresholdMonitor) Wait() {
	m.wg.Wait()
}

// Observe clasifica el stock resultante y emite las alertas. Devuelve las alertas entregadas.
func (m *ThresholdMonitor) Observe(ctx context.Context, movement *entity.Movement, material *entity.Material) []entity.StockAlert {
	severity, ok := domaininv.Classify(movement.StockAfter, material.MinimumStock)
	if !ok {
		return nil
	}
	log := m.log.With().
		Int64("movement_id", movement.ID).
		Str("material_id", material.ID).
		Str("warehouse_id", movement.WarehouseID).
		Str("severity", string(severity)).
		Logger()

	recipients, err := m.users.ListIDsByRoles(ctx, entity.ElevatedRoles...)
	if err != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", "recipients")))
		log.Warn().Err(err).Msg("no se pudieron resolver destinatarios de alerta")
		return nil
	}
	if len(recipients) == 0 {
		log.Debug().Msg("alerta sin destinatarios")
		return nil
	}

	now := m.now()
	alerts := make([]entity.StockAlert, len(recipients))
	delivered := make([]bool, len(recipients))
	for i, r := range recipients {
		alerts[i] = entity.StockAlert{
			ID:           uuid.New().String(),
			RecipientID:  r,
			MaterialID:   material.ID,
			MaterialName: material.Name,
			WarehouseID:  movement.WarehouseID,
			CurrentStock: movement.StockAfter,
			MinimumStock: material.MinimumStock,
			Severity:     severity,
			MovementID:   movement.ID,
			CreatedAt:    now,
		}
	}

	var g errgroup.Group
	g.SetLimit(m.cfg.MaxParallel)
	for i := range alerts {
		g.Go(func() error {
			if err := m.emit(ctx, alerts[i]); err != nil {
				m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", "emit")))
				log.Warn().Err(err).Str("recipient_id", alerts[i].RecipientID).Msg("fallo al emitir alerta de stock")
				return nil
			}
			delivered[i] = true
			m.emitted.Add(ctx, 1, metric.WithAttributes(attribute.String("severity", string(severity))))
			return nil
		})
	}
	_ = g.Wait()

	out := make([]entity.StockAlert, 0, len(alerts))
	for i, a := range alerts {
		if delivered[i] {
			out = append(out, a)
		}
	}
	log.Info().Int("recipients", len(recipients)).Int("delivered", len(out)).Msg("alerta de stock emitida")
	return out
}
