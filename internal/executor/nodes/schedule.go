package nodes

import (
	"context"
	"encoding/json"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
)

type scheduleConfig struct {
	Cron string `json:"cron"`
}

// Schedule has no side effect at execution time — registration happens in
// the engine's pre-pass (spec §4.5) — it only reports the cron expression
// it was configured with, per spec §4.3.
type Schedule struct{}

func NewSchedule() *Schedule { return &Schedule{} }

func (Schedule) Execute(ctx context.Context, req executor.Request) adapter.Result {
	var cfg scheduleConfig
	if len(req.Node.Config) > 0 {
		_ = json.Unmarshal(req.Node.Config, &cfg)
	}
	return adapter.ScheduleSet(cfg.Cron)
}
