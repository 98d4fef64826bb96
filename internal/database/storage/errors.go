package storage

import (
	"errors"

	"github.com/GoArmGo/Foodgram/internal/core/ports"
	"gorm.io/gorm"
)

// translateError приводит ошибки gorm к ошибкам портов.
// Нарушение уникальности (в том числе при гонке двух запросов) превращается в ports.ErrDuplicate.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ports.ErrRecordNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ports.ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ports.ErrReferenceMissing
	}
	return err
}
