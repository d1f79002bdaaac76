package availability

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"prepbook/database/repository"
	"prepbook/models"
	"prepbook/utils"

	"go.uber.org/zap"
)

const maxBufferMinutes = 240

func invalidRule(format string, args ...interface{}) error {
	return utils.Validation("INVALID_SLOT_RULE", fmt.Sprintf(format, args...))
}

// canonicalDay maps "monday", "MON" style input onto the stored weekday name.
func canonicalDay(day string) (string, bool) {
	d := strings.ToLower(strings.TrimSpace(day))
	for _, w := range models.Weekdays {
		lw := strings.ToLower(w)
		if d == lw || (len(d) == 3 && strings.HasPrefix(lw, d)) {
			return w, true
		}
	}
	return "", false
}

func validRange(start, end string) bool {
	s, err := utils.ParseClock(start)
	if err != nil {
		return false
	}
	e, err := utils.ParseClock(end)
	return err == nil && s < e
}

// normalizeRules validates a save request and returns exactly one rule per weekday, Monday first.
func normalizeRules(req models.SaveSlotRuleRequest) ([]models.DayRule, []string, map[string][]models.TimeRange, error) {
	byDay := make(map[string]models.DayRule, len(models.Weekdays))
	for _, d := range req.Days {
		name, ok := canonicalDay(d.Day)
		if !ok {
			return nil, nil, nil, invalidRule("unknown weekday %q", d.Day)
		}
		if _, dup := byDay[name]; dup {
			return nil, nil, nil, invalidRule("%s is listed more than once", name)
		}
		if d.BufferMinutes < 0 || d.BufferMinutes > maxBufferMinutes {
			return nil, nil, nil, invalidRule("%s buffer must be between 0 and %d minutes", name, maxBufferMinutes)
		}
		if d.Enabled && !validRange(d.StartTime, d.EndTime) {
			return nil, nil, nil, invalidRule("%s needs HH:MM start and end times with start before end", name)
		}
		if !d.Enabled {
			for _, t := range []string{d.StartTime, d.EndTime} {
				if t == "" {
					continue
				}
				if _, err := utils.ParseClock(t); err != nil {
					return nil, nil, nil, invalidRule("%s has a malformed time %q", name, t)
				}
			}
		}
		d.Day = name
		byDay[name] = d
	}

	days := make([]models.DayRule, 0, len(models.Weekdays))
	for _, w := range models.Weekdays {
		if d, ok := byDay[w]; ok {
			days = append(days, d)
			continue
		}
		days = append(days, models.DayRule{Day: w})
	}

	seen := make(map[string]bool, len(req.BlockedDates))
	blocked := make([]string, 0, len(req.BlockedDates))
	for _, date := range req.BlockedDates {
		if !validDate(date) {
			return nil, nil, nil, invalidRule("blocked date %q must be YYYY-MM-DD", date)
		}
		if !seen[date] {
			seen[date] = true
			blocked = append(blocked, date)
		}
	}
	sort.Strings(blocked)

	var excluded map[string][]models.TimeRange
	if len(req.ExcludedSlots) > 0 {
		excluded = make(map[string][]models.TimeRange, len(req.ExcludedSlots))
		for date, ranges := range req.ExcludedSlots {
			if !validDate(date) {
				return nil, nil, nil, invalidRule("excluded slot date %q must be YYYY-MM-DD", date)
			}
			for _, r := range ranges {
				if !validRange(r.Start, r.End) {
					return nil, nil, nil, invalidRule("excluded range %s-%s on %s is malformed", r.Start, r.End, date)
				}
			}
			excluded[date] = ranges
		}
	}
	return days, blocked, excluded, nil
}

func validDate(date string) bool {
	if len(date) != len(utils.DateLayout) {
		return false
	}
	_, err := utils.ParseDate(date, time.UTC)
	return err == nil
}

// DefaultRules is the rule set of a provider that never saved one: every weekday disabled.
func DefaultRules(providerID string) *models.SlotRule {
	days := make([]models.DayRule, 0, len(models.Weekdays))
	for _, w := range models.Weekdays {
		days = append(days, models.DayRule{Day: w})
	}
	return &models.SlotRule{ProviderID: providerID, Days: days, BlockedDates: []string{}}
}

func (s *DefaultAvailabilityService) SaveRules(ctx context.Context, providerID string, req models.SaveSlotRuleRequest) (*models.SlotRule, error) {
	if providerID == "" {
		return nil, utils.Validation("INVALID_REQUEST", "provider id is required")
	}
	days, blocked, excluded, err := normalizeRules(req)
	if err != nil {
		return nil, err
	}

	saved, err := s.Rules.Upsert(ctx, &models.SlotRule{
		ProviderID:    providerID,
		Days:          days,
		BlockedDates:  blocked,
		ExcludedSlots: excluded,
	})
	if err != nil {
		s.Logger.Error("failed to save slot rules", zap.String("providerId", providerID), zap.Error(err))
		return nil, utils.Internal("could not save slot rules", err)
	}
	s.Logger.Info("slot rules saved", zap.String("providerId", providerID), zap.Int("blockedDates", len(blocked)))
	return saved, nil
}

func (s *DefaultAvailabilityService) GetRules(ctx context.Context, providerID string) (*models.SlotRule, error) {
	rule, err := s.Rules.GetByProviderID(ctx, providerID)
	if errors.Is(err, repository.ErrNotFound) {
		return DefaultRules(providerID), nil
	}
	if err != nil {
		return nil, utils.Internal("could not load slot rules", err)
	}
	return rule, nil
}
