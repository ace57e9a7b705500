package agent

import "context"

// Agent is a background job. Agents with an empty schedule only run on demand.
type Agent interface {
	GetName() string

	// GetSchedule returns a cron expression such as "0 3 * * *".
	GetSchedule() string

	Execute(ctx context.Context) error
}
