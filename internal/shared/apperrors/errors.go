// Package apperrors holds the flat, code-tagged error taxonomy shared by every
// feature package. The HTTP status carried by an Error is the class of the
// failure; Code is the machine-readable reason clients switch on.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]interface{}
	cause   error
}

func New(code string, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches on Code so that copies made by WithDetails/WithMessage still
// compare equal to their sentinel.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetails returns a copy carrying structured details for the client
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// WithMessage returns a copy with a more specific human message
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap attaches an underlying cause, keeping code and status
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

// As extracts an *Error from err's chain
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Generic
var (
	ErrValidation   = New("VALIDATION_FAILED", http.StatusBadRequest, "Validation failed")
	ErrInvalidInput = New("INVALID_INPUT", http.StatusBadRequest, "Invalid request")
	ErrUnauthorized = New("UNAUTHORIZED", http.StatusUnauthorized, "User not authenticated")
	ErrForbidden    = New("FORBIDDEN", http.StatusForbidden, "Access denied")
	ErrInternal     = New("INTERNAL_ERROR", http.StatusInternalServerError, "Internal server error")
)

// Trips and tickets
var (
	ErrTripNotFound          = New("TRIP_NOT_FOUND", http.StatusNotFound, "Trip not found")
	ErrInvalidItinerary      = New("INVALID_ITINERARY", http.StatusBadRequest, "Day plans do not match trip duration")
	ErrNoSeatsAvailable      = New("NO_SEATS_AVAILABLE", http.StatusBadRequest, "No seats available for this trip")
	ErrInvalidOrReservedSeat = New("INVALID_OR_RESERVED_SEAT", http.StatusBadRequest, "Selected seat is invalid or already reserved")
	ErrSeatBlockExhausted    = New("SEAT_BLOCK_EXHAUSTED", http.StatusConflict, "No free seat left in the requested class")
	ErrInvalidSeatClass      = New("INVALID_SEAT_CLASS", http.StatusBadRequest, "Seat class is not offered on this trip")
	ErrTicketNotFound        = New("TICKET_NOT_FOUND", http.StatusNotFound, "Ticket not found")
	ErrInvalidStatus         = New("INVALID_STATUS", http.StatusBadRequest, "Invalid status")
)

// Registrations
var (
	ErrRegistrationNotFound  = New("REGISTRATION_NOT_FOUND", http.StatusNotFound, "Registration not found")
	ErrAlreadyRegistered     = New("ALREADY_REGISTERED", http.StatusBadRequest, "Already registered for this trip")
	ErrTripFull              = New("TRIP_FULL", http.StatusBadRequest, "Trip is full")
	ErrCannotCancelApproved  = New("CANNOT_CANCEL_APPROVED", http.StatusBadRequest, "Cannot cancel approved registration. Please contact admin.")
	ErrRegistrationFinalized = New("REGISTRATION_FINALIZED", http.StatusConflict, "Registration has already been decided")
)

// Marketplace
var (
	ErrProductNotFound   = New("PRODUCT_NOT_FOUND", http.StatusNotFound, "Product not found")
	ErrInsufficientStock = New("INSUFFICIENT_STOCK", http.StatusBadRequest, "Insufficient stock")
	ErrInvalidQuantity   = New("INVALID_QUANTITY", http.StatusBadRequest, "Invalid quantity")
	ErrItemNotInCart     = New("ITEM_NOT_IN_CART", http.StatusNotFound, "Item not in cart")
	ErrEmptyCart         = New("EMPTY_CART", http.StatusBadRequest, "Cart is empty")
	ErrOrderNotFound     = New("ORDER_NOT_FOUND", http.StatusNotFound, "Order not found")
	ErrTotalMismatch     = New("TOTAL_MISMATCH", http.StatusBadRequest, "Order total does not match item prices")
)

// Notifications
var (
	ErrNotificationNotFound = New("NOTIFICATION_NOT_FOUND", http.StatusNotFound, "Notification not found")
)
