package workers

import (
	"context"
	"log"
	"time"

	"psiconecta/entitlement"
	"psiconecta/models"
	"psiconecta/wizard"
)

// CompletenessSource é o que o worker precisa do banco.
type CompletenessSource interface {
	Stale(ctx context.Context, limit int) ([]models.Professional, error)
	MarkCompleteness(ctx context.Context, userID int64, c entitlement.Completeness) error
}

// StartCompletenessWorker recalcula, a cada interval, a flag de completude dos
// cadastros alterados desde a última checagem (gravações que falharam ao
// publicar, edições feitas pelo admin, migrações). Para quando ctx termina.
func StartCompletenessWorker(ctx context.Context, src CompletenessSource, nav wizard.Navigator, interval time.Duration, batch int) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				SweepCompleteness(ctx, src, nav, batch)
			}
		}
	}()
}

// SweepCompleteness processa um lote e devolve quantos cadastros foram marcados.
func SweepCompleteness(ctx context.Context, src CompletenessSource, nav wizard.Navigator, batch int) int {
	profiles, err := src.Stale(ctx, batch)
	if err != nil {
		log.Printf("completeness worker: query error: %v", err)
		return 0
	}

	done := 0
	for _, p := range profiles {
		c := entitlement.Evaluate(p.Snapshot().Normalize())
		if err := src.MarkCompleteness(ctx, p.UserID, c); err != nil {
			log.Printf("completeness worker: mark error user=%d: %v", p.UserID, err)
			continue
		}
		if nav != nil {
			if err := nav.Publish(ctx, p.UserID, c); err != nil {
				log.Printf("completeness worker: publish error user=%d: %v", p.UserID, err)
			}
		}
		if c.Overall != p.Complete {
			log.Printf("completeness worker: user=%d complete %v -> %v", p.UserID, p.Complete, c.Overall)
		}
		done++
	}
	return done
}
