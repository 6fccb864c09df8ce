package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrNotFound            = errors.New("not_found")
	ErrLocked              = errors.New("quote_locked")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidTitle        = errors.New("invalid_title")
	ErrInvalidCurrency     = errors.New("invalid_currency")
	ErrInvalidExchangeRate = errors.New("invalid_exchange_rate")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidLineNumber   = errors.New("invalid_line_number")
	ErrInvalidStatus       = errors.New("invalid_status")
	ErrInvalidTransition   = errors.New("invalid_transition")
)

// InvalidTransitionError names both sides of a rejected status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid_transition: %s -> %s", e.From, e.To)
}

// Is lets errors.Is match the ErrInvalidTransition sentinel.
func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
