package storage

import (
	"fmt"

	"livrocaixa/internal/core"
)

// validateLoaded rejects entries with an unknown transaction type so a
// hand-edited file or corrupt row never leaks into the pipeline.
func validateLoaded(entries []core.Entry) error {
	for _, e := range entries {
		if !e.Type.IsValid() {
			return fmt.Errorf("entry %s: unknown transaction type %q", e.ID, e.Type)
		}
	}
	return nil
}
