package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"syscall"
)

var (
	// ErrConnectivity marks failures to reach a store. The router fails over on it.
	ErrConnectivity = errors.New("credential store unreachable")
	// ErrIntegrity marks constraint violations. These are never retried elsewhere.
	ErrIntegrity = errors.New("integrity constraint violated")
	// ErrUniqueViolation is the unique-constraint flavour of ErrIntegrity.
	ErrUniqueViolation = fmt.Errorf("%w: unique constraint", ErrIntegrity)
	// ErrUnsupportedQuery is returned for a Kind a backend has no statement for.
	ErrUnsupportedQuery = errors.New("unsupported query")
	// ErrNoPrimary is returned when recovery is requested without a primary store.
	ErrNoPrimary = errors.New("no primary store configured")
)

func connectivity(err error) error {
	return fmt.Errorf("%w: %w", ErrConnectivity, err)
}

func integrity(err error) error {
	return fmt.Errorf("%w: %w", ErrIntegrity, err)
}

func uniqueViolation(err error) error {
	return fmt.Errorf("%w: %w", ErrUniqueViolation, err)
}

// classifyTransport recognises driver-independent connection failures.
func classifyTransport(err error) error {
	if errors.Is(err, ErrConnectivity) || errors.Is(err, ErrIntegrity) {
		return err
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETUNREACH):
		return connectivity(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return connectivity(err)
	}

	return err
}
