package postgres

import (
	"time"

	"github.com/google/uuid"
)

// assignIdentity fills in id and creation time when the caller left them unset.
func assignIdentity(id *uuid.UUID, createdAt *time.Time) error {
	if *id == uuid.Nil {
		generated, err := uuid.NewV7()
		if err != nil {
			return err
		}
		*id = generated
	}
	if createdAt.IsZero() {
		*createdAt = time.Now()
	}
	return nil
}
