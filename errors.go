package firmint

import (
	"errors"

	"github.com/firmint/firmint/application/service"
)

// Exported errors for library consumers.
var (
	// ErrNoProvider indicates no completion provider was configured.
	ErrNoProvider = errors.New("firmint: no completion provider configured")

	// ErrClientClosed indicates the client has been closed. It aliases the
	// service-level sentinel so errors.Is matches either spelling.
	ErrClientClosed = service.ErrClientClosed
)
