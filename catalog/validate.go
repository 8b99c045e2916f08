package catalog

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrInvalidValue = errors.New("invalid value")

	validDocumentNameRE = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]{1,127}$`)
)

type ValidateFunc func() error

type ValidateFields map[string]ValidateFunc

func Validate(validators ValidateFields) error {
	for field, validator := range validators {
		if err := validator(); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidValue, field)
		}
	}
	return nil
}

func ValidateNonEmptyString(s string) ValidateFunc {
	return func() error {
		if len(s) == 0 {
			return ErrInvalidValue
		}
		return nil
	}
}

func ValidateDocumentName(name string) ValidateFunc {
	return func() error {
		if !validDocumentNameRE.MatchString(name) {
			return ErrInvalidValue
		}
		return nil
	}
}

func ValidateActor(name string) ValidateFunc {
	return ValidateNonEmptyString(name)
}

func ValidateTable(t *Table) ValidateFunc {
	return func() error {
		if t == nil {
			return ErrInvalidValue
		}
		return nil
	}
}
