package workers

import (
	"context"
	"math/rand"
	"time"

	"hr-portal/internal/domain/leaves"
	"hr-portal/internal/domain/resources"
	"hr-portal/internal/platform/logger"
)

// SimulatedDecider es el decidedBy que queda en los pedidos resueltos por el simulador.
const SimulatedDecider = "simulated-manager"

// PendingLeaves lo implementa *leaves.Service.
type PendingLeaves interface {
	PendingOlderThan(ctx context.Context, age time.Duration) ([]leaves.LeaveRequest, error)
}

type SimulatedManagerOptions struct {
	MinAge       time.Duration
	ApproveRatio float64
	// Rand no es seguro entre goroutines: el manager corre en un solo loop.
	Rand *rand.Rand
}

// SimulatedManager decide pedidos de licencia pendientes en lugar de un manager real.
// Usa el mismo leaves.Approver que la decisión humana.
type SimulatedManager struct {
	pending  PendingLeaves
	approver leaves.Approver
	minAge   time.Duration
	ratio    float64
	rnd      *rand.Rand
	log      logger.Logger
}

func NewSimulatedManager(pending PendingLeaves, approver leaves.Approver, opts SimulatedManagerOptions, log logger.Logger) *SimulatedManager {
	if log == nil {
		log = logger.Nop()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	ratio := opts.ApproveRatio
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return &SimulatedManager{
		pending:  pending,
		approver: approver,
		minAge:   opts.MinAge,
		ratio:    ratio,
		rnd:      rnd,
		log:      log.With(map[string]any{"module": "workers", "worker": SimulatedDecider}),
	}
}

func (m *SimulatedManager) RunOnce(ctx context.Context) error {
	_, err := m.DecidePending(ctx)
	return err
}

// DecidePending devuelve cuántos pedidos quedaron decididos en esta pasada.
func (m *SimulatedManager) DecidePending(ctx context.Context) (int, error) {
	pending, err := m.pending.PendingOlderThan(ctx, m.minAge)
	if err != nil {
		return 0, err
	}

	decided := 0
	for _, l := range pending {
		if ctx.Err() != nil {
			return decided, ctx.Err()
		}
		to := leaves.StatusRejected
		if m.rnd.Float64() < m.ratio {
			to = leaves.StatusApproved
		}

		// Si un humano decidió entre medio, Decide no aplica y seguimos.
		_, applied, err := m.approver.Decide(ctx, l.ID, to, SimulatedDecider)
		if err != nil {
			m.log.Warn("simulated decision failed", map[string]any{
				"leave": resources.Encode(resources.TypeLeaveRequest, l.ID),
				"error": err.Error(),
			})
			continue
		}
		if applied {
			decided++
		}
	}
	return decided, nil
}
