package models

import "github.com/google/uuid"

// assignID gives a row a fresh UUID unless the caller already chose one.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
