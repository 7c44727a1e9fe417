package persistence

import (
	"errors"

	"github.com/donortrack/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateWriteError maps driver errors translated by GORM onto domain errors
func translateWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.ErrAlreadyExists
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
