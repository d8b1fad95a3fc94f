package knowledge

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDimensionMismatch is returned when a vector's length differs from
	// the dimension the store was initialized with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrMalformedRow is returned when an entry fails row validation
	// (empty content). The whole batch is rejected.
	ErrMalformedRow = errors.New("malformed entry row")

	// ErrConnection is returned when the backend is unreachable.
	// No retry is attempted at this layer.
	ErrConnection = errors.New("database unreachable")

	// ErrNotFound is returned when an entry id does not exist.
	ErrNotFound = errors.New("entry not found")
)

// classify tags backend-unavailability errors with ErrConnection so callers
// can distinguish them with errors.Is without parsing messages.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}
