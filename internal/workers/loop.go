// Package workers tiene los loops de fondo: sync de estados por licencia y el manager simulado.
package workers

import (
	"context"
	"time"

	"hr-portal/internal/platform/logger"
)

// Runner es una pasada de un loop. El error se loguea y el loop sigue.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Loop corre r una vez al arrancar y después cada interval, hasta que ctx se cancela.
func Loop(ctx context.Context, name string, interval time.Duration, r Runner, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	log = log.With(map[string]any{"worker": name})

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("worker started", map[string]any{"interval": interval.String()})
	for {
		if err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Error("worker run failed", map[string]any{"error": err.Error()})
		}
		select {
		case <-ctx.Done():
			log.Info("worker stopped", nil)
			return
		case <-ticker.C:
		}
	}
}
