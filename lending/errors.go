package lending

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("lending: not found")
	ErrInvalidAmount = errors.New("lending: invalid amount")
	ErrUnknownAsset  = errors.New("lending: unknown asset")
)

// NotFoundError reports an entity that does not exist on chain. Callers that
// create missing entities test for it with errors.Is(err, ErrNotFound).
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lending: %s %q not found", e.Entity, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func errCount(want, got int) error {
	return fmt.Errorf("expected %d entries, got %d", want, got)
}
