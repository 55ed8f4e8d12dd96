package transferdelivery

import (
	"github.com/go-playground/validator/v10"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
)

// ValidTransferType checks that the bound field is a supported transfer type.
var ValidTransferType validator.Func = func(fieldLevel validator.FieldLevel) bool {
	if t, ok := fieldLevel.Field().Interface().(string); ok {
		return domain.TransferType(t).Valid()
	}

	return false
}
