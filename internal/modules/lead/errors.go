package lead

import "errors"

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrTerminalStatus  = errors.New("lead status is terminal")
	ErrConflict        = errors.New("lead was modified concurrently")
	ErrInvalidStatus   = errors.New("unknown lead status")
	ErrInvalidPriority = errors.New("unknown lead priority")
)
