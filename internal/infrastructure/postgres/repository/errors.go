package repository

import (
	"errors"

	"gorm.io/gorm"
)

// notFound swaps gorm's sentinel for the domain one and leaves other errors intact.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}
