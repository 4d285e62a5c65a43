package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"fees-backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	lastRunKeyFmt = "escalation:lastrun:%s"
	lastRunTTL    = 48 * time.Hour
)

var client *redis.Client

// Init connects to Redis. The cache is optional: on failure the client
// stays nil and every helper degrades to a miss.
func Init(addr, password string) error {
	if addr == "" {
		addr = "localhost:6379"
	}

	client = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// Runs is the escalation run cache backed by Redis
type Runs struct{}

func NewRuns() *Runs { return &Runs{} }

// StoreRun remembers the latest escalation summary for a tenant
func (Runs) StoreRun(ctx context.Context, summary *models.EscalationSummary) {
	if client == nil {
		return
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return
	}
	key := fmt.Sprintf(lastRunKeyFmt, summary.TenantID)
	if err := client.Set(ctx, key, data, lastRunTTL).Err(); err != nil {
		log.Printf("[Cache] failed to store run summary for %s: %v", summary.TenantID, err)
	}
}

// LastRun returns the cached summary for a tenant, if any
func (Runs) LastRun(ctx context.Context, tenantID string) (*models.EscalationSummary, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(lastRunKeyFmt, tenantID)).Bytes()
	if err != nil {
		return nil, false
	}
	summary := &models.EscalationSummary{}
	if err := json.Unmarshal(data, summary); err != nil {
		return nil, false
	}
	return summary, true
}
