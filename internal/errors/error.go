package errors

import "github.com/pkg/errors"

var (
	// common errors
	ErrTenantMissing = errors.New("tenant is missing")

	// domain errors
	ErrDomainNotFound      = errors.New("domain not found")
	ErrDomainAlreadyExists = errors.New("domain already registered for tenant")
	ErrInvalidDomainName   = errors.New("invalid domain name")

	// alert errors
	ErrAlertNotFound = errors.New("alert not found")

	// monitor errors
	ErrMonitorAlreadyRunning = errors.New("monitoring cycle already running")
	ErrMonitorNotStarted     = errors.New("monitor not started")
)
