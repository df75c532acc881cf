package domain

import "errors"

// Common domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInternalServer     = errors.New("internal server error")
	ErrDuplicateEntry     = errors.New("duplicate entry")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("token invalid")
)

// Catalog errors
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrBookOutOfStock   = errors.New("book is not available for borrowing")
)

// Lifecycle errors. Each precondition failure gets its own sentinel so
// staff can tell "already processed" from "no stock" from "not found".
var (
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrTicketNotFound       = errors.New("borrow ticket not found")
	ErrReturnTicketNotFound = errors.New("return ticket not found")
	ErrInvalidState         = errors.New("record is not in the required state")
	ErrDuplicateBorrow      = errors.New("user already has an active borrow for this book")
	ErrTicketNotReturnable  = errors.New("borrow ticket is not in a returnable state")
	ErrAlreadyReturned      = errors.New("borrow ticket already has a return ticket")
	ErrNoFine               = errors.New("return ticket has no fine")
	ErrFineAlreadyPaid      = errors.New("fine already paid")
	ErrNotOwner             = errors.New("record does not belong to the requesting user")
)
