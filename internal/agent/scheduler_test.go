package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingAgent struct {
	name     string
	schedule string
	runs     int
}

func (a *countingAgent) GetName() string     { return a.name }
func (a *countingAgent) GetSchedule() string { return a.schedule }
func (a *countingAgent) Execute(ctx context.Context) error {
	a.runs++
	return nil
}

func TestRegisterAndRunByName(t *testing.T) {
	s := NewScheduler(0, nil)
	nightly := &countingAgent{name: "nightly", schedule: "0 3 * * *"}
	manual := &countingAgent{name: "manual"}

	require.NoError(t, s.RegisterAgent(nightly))
	require.NoError(t, s.RegisterAgent(manual))
	assert.Equal(t, []string{"nightly", "manual"}, s.GetRegisteredAgents())

	require.NoError(t, s.RunAgentByName(context.Background(), "manual"))
	assert.Equal(t, 1, manual.runs)
	assert.Zero(t, nightly.runs)

	assert.Error(t, s.RunAgentByName(context.Background(), "missing"))
}

func TestRegisterRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(0, nil)
	err := s.RegisterAgent(&countingAgent{name: "broken", schedule: "every day"})
	assert.Error(t, err)
	assert.Empty(t, s.GetRegisteredAgents())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(0, nil)
	require.NoError(t, s.RegisterAgent(&countingAgent{name: "nightly", schedule: "@daily"}))
	s.Start()
	s.Stop(context.Background())
}
