package interfaces

import "context"

// DomainMonitor re-validates verified domains on a recurring schedule.
type DomainMonitor interface {
	Start(ctx context.Context) error
	Stop() error
	RunCycle(ctx context.Context) error
	IsRunning() bool
}
