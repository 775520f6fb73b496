package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrInvalidRecord is returned when a record fails validation.
var ErrInvalidRecord = errors.New("catalog: invalid record")

// Record is one catalog entry. Soup is the descriptive text that is embedded
// and matched by guardrails. Rating is informational only.
type Record struct {
	ID     int      `json:"movie_id" validate:"required,gt=0"`
	Title  string   `json:"title" validate:"required"`
	Soup   string   `json:"soup" validate:"required"`
	Rating *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=10"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the record shape.
func (r Record) Validate() error {
	if err := recordValidator().Struct(r); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("%w: id %d: field %s failed %q", ErrInvalidRecord, r.ID, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
