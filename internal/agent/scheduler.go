package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs registered agents on their cron schedules.
type Scheduler struct {
	cron    *cron.Cron
	agents  []Agent
	timeout time.Duration
	logger  *slog.Logger
}

// NewScheduler creates a scheduler. Each scheduled run is bounded by timeout when it is positive.
func NewScheduler(timeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		agents:  make([]Agent, 0),
		timeout: timeout,
		logger:  logger,
	}
}

// RegisterAgent adds the agent and schedules it when it has a schedule.
func (s *Scheduler) RegisterAgent(agent Agent) error {
	schedule := agent.GetSchedule()
	if schedule == "" {
		s.agents = append(s.agents, agent)
		s.logger.Info("agent registered on demand", "agent", agent.GetName())
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(agent) }); err != nil {
		return fmt.Errorf("schedule agent %s: %w", agent.GetName(), err)
	}
	s.agents = append(s.agents, agent)
	s.logger.Info("agent scheduled", "agent", agent.GetName(), "cron", schedule)
	return nil
}

func (s *Scheduler) run(agent Agent) {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	s.logger.Info("agent job started", "agent", agent.GetName())
	if err := agent.Execute(ctx); err != nil {
		s.logger.Error("agent job failed", "agent", agent.GetName(), "error", err)
		return
	}
	s.logger.Info("agent job completed", "agent", agent.GetName(), "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("agent scheduler started", "agents", len(s.agents))
}

// Stop stops the cron loop and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	s.logger.Info("agent scheduler stopped")
}

// RunAgentByName runs one agent immediately, whatever its schedule.
func (s *Scheduler) RunAgentByName(ctx context.Context, name string) error {
	for _, agent := range s.agents {
		if agent.GetName() == name {
			s.logger.InfoContext(ctx, "running agent on demand", "agent", name)
			return agent.Execute(ctx)
		}
	}
	return fmt.Errorf("agent %q not found", name)
}

func (s *Scheduler) GetRegisteredAgents() []string {
	names := make([]string, len(s.agents))
	for i, agent := range s.agents {
		names[i] = agent.GetName()
	}
	return names
}
