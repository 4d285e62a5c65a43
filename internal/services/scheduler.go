package services

import (
	"context"
	"log"
	"time"

	"fees-backend/internal/timeutil"
)

// StartScheduler runs the daily background cadence: the defaulter scan for
// each configured tenant, plus a gateway reconciliation sweep. The engine
// itself knows nothing about scheduling; this loop is just one possible
// external trigger and deployments may use a real cron instead.
func StartScheduler(escalation *EscalationService, gateway *GatewayService, tenants []string, hour int) {
	go func() {
		log.Printf("[Scheduler] started, daily run at %02d:00 IST for %d tenant(s)", hour, len(tenants))
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			now := timeutil.Now()
			if now.Hour() != hour || now.Minute() != 0 {
				continue
			}

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)

			for _, tenant := range tenants {
				if _, err := escalation.ProcessDefaulters(ctx, tenant); err != nil {
					log.Printf("[Scheduler] defaulter run failed for tenant %s: %v", tenant, err)
				}
			}

			if n, err := gateway.Reconcile(ctx); err != nil {
				log.Printf("[Scheduler] reconciliation failed: %v", err)
			} else if n > 0 {
				log.Printf("[Scheduler] reconciled %d captured order(s)", n)
			}

			cancel()
		}
	}()
}
