package domain

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Resource string
	ID       string
	Err      error
}

func (e NotFoundError) Error() string {
	switch {
	case e.Resource == "":
		return "not found"
	case e.ID == "":
		return fmt.Sprintf("%s not found", e.Resource)
	default:
		return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
	}
}

func (e NotFoundError) Unwrap() error { return e.Err }

// ValidationError is returned for malformed input.
type ValidationError struct {
	Field string
	Msg   string
}

func (e ValidationError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Field != "" {
		return fmt.Sprintf("invalid %s", e.Field)
	}
	return "validation error"
}

// InsufficientFundsError reports the balance observed when the conditional
// debit was rejected.
type InsufficientFundsError struct {
	Balance  int64
	Required int64
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient wallet balance: current %d, required %d", e.Balance, e.Required)
}

func (e InsufficientFundsError) Shortfall() int64 {
	return e.Required - e.Balance
}

type ConflictError struct {
	Resource string
	Field    string
	Err      error
}

func (e ConflictError) Error() string {
	switch {
	case e.Resource != "" && e.Field != "":
		return fmt.Sprintf("%s conflict on %s", e.Resource, e.Field)
	case e.Resource != "":
		return fmt.Sprintf("%s conflict", e.Resource)
	default:
		return "conflict"
	}
}

func (e ConflictError) Unwrap() error { return e.Err }

// DependencyError wraps failures of storage or collaborators.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e DependencyError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s unavailable", e.Dependency)
	}
	return fmt.Sprintf("%s unavailable: %v", e.Dependency, e.Err)
}

func (e DependencyError) Unwrap() error { return e.Err }

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsInsufficientFunds(err error) bool {
	var target InsufficientFundsError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target ConflictError
	return errors.As(err, &target)
}

func IsDependency(err error) bool {
	var target DependencyError
	return errors.As(err, &target)
}
