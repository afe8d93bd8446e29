package nodes

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SHXZ7/autofloww/internal/adapter"
	"github.com/SHXZ7/autofloww/internal/executor"
	"github.com/SHXZ7/autofloww/internal/workflow"
)

func TestSchedule_ReportsConfiguredCronExpr(t *testing.T) {
	s := NewSchedule()
	req := executor.Request{
		Node: workflow.Node{Kind: workflow.NodeSchedule, Config: json.RawMessage(`{"cron":"0 9 * * MON"}`)},
	}
	res := s.Execute(context.Background(), req)
	assert.Equal(t, adapter.ScheduleSet("0 9 * * MON"), res)
}

func TestSchedule_EmptyConfigYieldsEmptyExpr(t *testing.T) {
	s := NewSchedule()
	res := s.Execute(context.Background(), executor.Request{Node: workflow.Node{Kind: workflow.NodeSchedule}})
	assert.Equal(t, adapter.ScheduleSet(""), res)
}
