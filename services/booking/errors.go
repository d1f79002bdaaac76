package booking

import (
	"errors"

	"prepbook/database/repository"
	"prepbook/utils"
)

var (
	ErrBookingNotFound   = utils.NotFound("BOOKING_NOT_FOUND", "booking not found")
	ErrUserNotFound      = utils.NotFound("USER_NOT_FOUND", "user not found")
	ErrProviderNotFound  = utils.NotFound("PROVIDER_NOT_FOUND", "interviewer not found or not approved")
	ErrPlatformMissing   = utils.NotFound("PLATFORM_ACCOUNT_MISSING", "platform account is not configured")
	ErrSlotUnavailable   = utils.Conflict("SLOT_UNAVAILABLE", "the selected slot is no longer available")
	ErrWindowClosed      = utils.Conflict("CANCELLATION_WINDOW_CLOSED", "bookings cannot be cancelled this close to the start time")
	ErrNotOwner          = utils.Forbidden("NOT_BOOKING_OWNER", "only the payer can cancel this booking")
	ErrNotParty          = utils.Forbidden("NOT_BOOKING_PARTY", "you are not part of this booking")
	ErrSignatureMismatch = utils.Payment("SIGNATURE_MISMATCH", "payment signature could not be verified")
	ErrOrderMismatch     = utils.Payment("ORDER_MISMATCH", "payment does not belong to this booking's order")
	ErrPaymentUsed       = utils.Conflict("PAYMENT_ALREADY_USED", "this payment was already applied")
)

func invalidState(message string) error {
	return utils.Conflict("INVALID_STATE", message)
}

func invalidRequest(code, message string) error {
	return utils.Validation(code, message)
}

// unitError maps a failed atomic unit onto the error the caller sees.
func unitError(err error, what string) error {
	var appErr *utils.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrCommitUnknown):
		return utils.Reconciliation(what+": commit outcome unknown, ledger may need reconciliation", err)
	case errors.Is(err, repository.ErrNotFound):
		return ErrBookingNotFound
	default:
		return utils.Internal(what, err)
	}
}
