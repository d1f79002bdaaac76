package availability

import (
	"context"
	"errors"
	"time"

	"prepbook/database/repository"
	"prepbook/models"
	"prepbook/utils"

	"go.uber.org/zap"
)

// GetAvailability lists the open slots of a provider on date. Booked slots are left out.
func (s *DefaultAvailabilityService) GetAvailability(ctx context.Context, providerID, date string) (*models.AvailabilityResponse, error) {
	if providerID == "" {
		return nil, utils.Validation("INVALID_REQUEST", "provider id is required")
	}
	day, err := s.parseBookableDate(date)
	if err != nil {
		return nil, err
	}

	resp := &models.AvailabilityResponse{
		Day:   day.Weekday().String(),
		Date:  date,
		Slots: []models.AvailableSlot{},
	}

	rule, err := s.Rules.GetByProviderID(ctx, providerID)
	if errors.Is(err, repository.ErrNotFound) {
		return resp, nil
	}
	if err != nil {
		s.Logger.Error("failed to load slot rules", zap.String("providerId", providerID), zap.Error(err))
		return nil, utils.Internal("could not load slot rules", err)
	}
	if rule.IsBlocked(date) {
		return resp, nil
	}
	dayRule, ok := rule.DayRuleFor(resp.Day)
	if !ok || !dayRule.Enabled {
		return resp, nil
	}

	candidates := s.generate(dayRule)
	if len(candidates) == 0 {
		return resp, nil
	}

	booked, err := s.bookedSlots(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	isToday := now.Format(utils.DateLayout) == date
	nowMinutes := now.Hour()*60 + now.Minute()

	for _, c := range candidates {
		start, end := utils.FormatClock(c[0]), utils.FormatClock(c[1])
		if booked[start+"|"+end] {
			continue
		}
		if isToday && c[0] <= nowMinutes {
			continue
		}
		resp.Slots = append(resp.Slots, models.AvailableSlot{Start: start, End: end, Available: true})
	}
	return resp, nil
}

// parseBookableDate rejects malformed and past dates.
func (s *DefaultAvailabilityService) parseBookableDate(date string) (time.Time, error) {
	if len(date) != len(utils.DateLayout) {
		return time.Time{}, utils.Validation("INVALID_DATE", "date must be YYYY-MM-DD")
	}
	parsed, err := utils.ParseDate(date, s.loc())
	if err != nil {
		return time.Time{}, utils.Validation("INVALID_DATE", "date must be YYYY-MM-DD")
	}
	if date < s.now().Format(utils.DateLayout) {
		return time.Time{}, utils.Validation("PAST_DATE", "availability cannot be requested for a past date")
	}
	return parsed, nil
}

// generate walks the day window in slot-length steps separated by the buffer.
// Each candidate is [startMinute, endMinute].
func (s *DefaultAvailabilityService) generate(rule models.DayRule) [][2]int {
	if rule.StartTime == "" || rule.EndTime == "" {
		return nil
	}
	open, err := utils.ParseClock(rule.StartTime)
	if err != nil {
		return nil
	}
	closeAt, err := utils.ParseClock(rule.EndTime)
	if err != nil || closeAt <= open {
		return nil
	}

	length := s.slotMinutes()
	step := length + rule.BufferMinutes
	var out [][2]int
	for start := open; start+length <= closeAt; start += step {
		out = append(out, [2]int{start, start + length})
	}
	return out
}

func (s *DefaultAvailabilityService) bookedSlots(ctx context.Context, providerID, date string) (map[string]bool, error) {
	bookings, err := s.Bookings.ListActiveByProviderDate(ctx, providerID, date)
	if err != nil {
		s.Logger.Error("failed to load bookings for availability",
			zap.String("providerId", providerID), zap.String("date", date), zap.Error(err))
		return nil, utils.Internal("could not load bookings", err)
	}
	booked := make(map[string]bool, len(bookings))
	for _, b := range bookings {
		booked[b.StartTime+"|"+b.EndTime] = true
	}
	return booked, nil
}
