package booking

import (
	"context"
	"errors"

	"prepbook/database/repository"
	"prepbook/models"
	"prepbook/utils"
)

// settlementPostings is the triad for a booking that just became paid.
// The payer leg is skipped when the money was collected by the gateway.
// Gateway legs carry the payment id as their reference.
func settlementPostings(b *models.Booking, platformID, event string, debitPayer bool) []models.Posting {
	breakdown := &models.FeeBreakdown{ProviderFee: b.ProviderShare, PlatformFee: b.PlatformFee}
	var out []models.Posting
	if debitPayer {
		out = append(out, models.Posting{
			SubjectID: b.UserID, Role: models.RoleUser, Type: models.TxDebit, Amount: b.Amount,
			Reason: "Interview booking " + b.Date + " " + b.StartTime, BookingID: b.ID, Event: event, Reference: b.PaymentID,
			Breakdown: breakdown, RequireFunds: true,
		})
	}
	out = append(out,
		models.Posting{
			SubjectID: b.ProviderID, Role: models.RoleInterviewer, Type: models.TxCredit, Amount: b.ProviderShare,
			Reason: "Interview session earnings", BookingID: b.ID, Event: event, Reference: b.PaymentID, Breakdown: breakdown,
		},
		models.Posting{
			SubjectID: platformID, Role: models.RoleAdmin, Type: models.TxCredit, Amount: b.PlatformFee,
			Reason: "Platform fee", BookingID: b.ID, Event: event, Reference: b.PaymentID, Breakdown: breakdown,
			DisplayName: "Platform",
		},
	)
	return nonZero(out)
}

// reversalPostings undoes a settlement: payer refunded in full, provider and platform debited their parts.
func reversalPostings(b *models.Booking, platformID, event, reason string) []models.Posting {
	breakdown := &models.FeeBreakdown{ProviderFee: b.ProviderShare, PlatformFee: b.PlatformFee}
	return nonZero([]models.Posting{
		{
			SubjectID: b.UserID, Role: models.RoleUser, Type: models.TxCredit, Amount: b.Amount,
			Reason: "Refund: " + reason, BookingID: b.ID, Event: event, Reference: b.PaymentID, Breakdown: breakdown,
		},
		{
			SubjectID: b.ProviderID, Role: models.RoleInterviewer, Type: models.TxDebit, Amount: b.ProviderShare,
			Reason: "Booking cancelled: earnings reversed", BookingID: b.ID, Event: event, Reference: b.PaymentID, Breakdown: breakdown,
		},
		{
			SubjectID: platformID, Role: models.RoleAdmin, Type: models.TxDebit, Amount: b.PlatformFee,
			Reason: "Booking cancelled: fee reversed", BookingID: b.ID, Event: event, Reference: b.PaymentID, Breakdown: breakdown,
			DisplayName: "Platform",
		},
	})
}

func nonZero(postings []models.Posting) []models.Posting {
	out := postings[:0]
	for _, p := range postings {
		if p.Amount > 0 {
			out = append(out, p)
		}
	}
	return out
}

func (s *DefaultBookingService) platformAccount(ctx context.Context) (string, error) {
	admin, err := s.Users.FindAdminAccount(ctx)
	if errors.Is(err, repository.ErrNotFound) {
		return "", ErrPlatformMissing
	}
	if err != nil {
		return "", utils.Internal("could not resolve platform account", err)
	}
	return admin.ID, nil
}
