package coordination

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
)

const (
	instancesKey  = "livescore:instances"
	staleAfter    = 60 * time.Second
	heartbeatRate = 15 * time.Second
)

// InstanceRegistry tracks running processes in a shared Redis hash so
// operators can see which gateways and workers are alive. Each process
// refreshes its own field; entries without a recent heartbeat are
// treated as gone rather than expired explicitly.
type InstanceRegistry struct {
	rdb        *goredis.Client
	instanceID string
	role       string
	clock      clockwork.Clock
}

// InstanceInfo is one registered process.
type InstanceInfo struct {
	InstanceID string `json:"instanceId"`
	Role       string `json:"role"`
	Timestamp  int64  `json:"timestamp"`
}

// NewInstanceRegistry creates a registry entry for this process. role
// distinguishes gateway from worker processes in operator views.
func NewInstanceRegistry(rdb *goredis.Client, instanceID, role string, clock clockwork.Clock) *InstanceRegistry {
	return &InstanceRegistry{rdb: rdb, instanceID: instanceID, role: role, clock: clock}
}

// Start registers immediately and then refreshes the heartbeat until
// ctx is cancelled, unregistering on the way out. Blocks; run it on its
// own goroutine.
func (r *InstanceRegistry) Start(ctx context.Context) {
	r.register(ctx)

	ticker := r.clock.NewTicker(heartbeatRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
			r.register(ctx)
		case <-ctx.Done():
			r.unregister()
			return
		}
	}
}

func (r *InstanceRegistry) register(ctx context.Context) {
	info := InstanceInfo{
		InstanceID: r.instanceID,
		Role:       r.role,
		Timestamp:  r.clock.Now().Unix(),
	}
	data, err := json.Marshal(info)
	if err != nil {
		return
	}
	if err := r.rdb.HSet(ctx, instancesKey, r.instanceID, data).Err(); err != nil {
		slog.Warn("Failed to refresh instance heartbeat", "error", err)
	}
}

func (r *InstanceRegistry) unregister() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = r.rdb.HDel(ctx, instancesKey, r.instanceID).Err()
}

// ActiveInstances lists processes with a heartbeat in the last minute.
func (r *InstanceRegistry) ActiveInstances(ctx context.Context) ([]InstanceInfo, error) {
	entries, err := r.rdb.HGetAll(ctx, instancesKey).Result()
	if err != nil {
		return nil, err
	}

	cutoff := r.clock.Now().Add(-staleAfter).Unix()
	active := make([]InstanceInfo, 0, len(entries))
	for _, data := range entries {
		var info InstanceInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			continue
		}
		if info.Timestamp >= cutoff {
			active = append(active, info)
		}
	}
	return active, nil
}
