package availability

import (
	"context"
	"time"

	bookingRepo "prepbook/database/repository/booking"
	slotRuleRepo "prepbook/database/repository/slotrule"
	"prepbook/models"

	"go.uber.org/zap"
)

// AvailabilityService answers "what can be booked" and owns provider slot rules.
type AvailabilityService interface {
	GetAvailability(ctx context.Context, providerID, date string) (*models.AvailabilityResponse, error)
	SaveRules(ctx context.Context, providerID string, req models.SaveSlotRuleRequest) (*models.SlotRule, error)
	GetRules(ctx context.Context, providerID string) (*models.SlotRule, error)
}

// DefaultAvailabilityService implements AvailabilityService.
type DefaultAvailabilityService struct {
	Rules      slotRuleRepo.SlotRuleRepository
	Bookings   bookingRepo.BookingRepository
	SlotLength time.Duration
	Location   *time.Location
	Now        func() time.Time
	Logger     *zap.Logger
}

func (s *DefaultAvailabilityService) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.loc())
	}
	return time.Now().In(s.loc())
}

func (s *DefaultAvailabilityService) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *DefaultAvailabilityService) slotMinutes() int {
	if s.SlotLength <= 0 {
		return 60
	}
	return int(s.SlotLength / time.Minute)
}
