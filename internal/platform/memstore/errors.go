package memstore

import "fmt"

func errorsJoin(sentinel, cause error) error {
	return fmt.Errorf("%w: %w", sentinel, cause)
}
