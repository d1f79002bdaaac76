package models

import "time"

// Weekdays in the order rules are stored.
var Weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayRule is the weekly availability window for one weekday.
type DayRule struct {
	Day           string `bson:"day" json:"day"`
	StartTime     string `bson:"startTime" json:"startTime"` // "HH:MM"; "" or "00:00" with EndTime means not configured
	EndTime       string `bson:"endTime" json:"endTime"`
	BufferMinutes int    `bson:"bufferMinutes" json:"bufferMinutes"`
	Enabled       bool   `bson:"enabled" json:"enabled"`
}

// TimeRange is a same-day [Start, End) window in "HH:MM".
type TimeRange struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// SlotRule holds an interviewer's weekly rules plus date exceptions. One per provider.
type SlotRule struct {
	ID            string                 `bson:"id" json:"id"`
	ProviderID    string                 `bson:"providerId" json:"providerId"`
	Days          []DayRule              `bson:"days" json:"days"`
	BlockedDates  []string               `bson:"blockedDates" json:"blockedDates"`
	ExcludedSlots map[string][]TimeRange `bson:"excludedSlots,omitempty" json:"excludedSlots,omitempty"`
	CreatedAt     time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time              `bson:"updatedAt" json:"updatedAt"`
}

// DayRuleFor returns the rule for the given weekday name, if any.
func (r *SlotRule) DayRuleFor(day string) (DayRule, bool) {
	for _, d := range r.Days {
		if d.Day == day {
			return d, true
		}
	}
	return DayRule{}, false
}

// IsBlocked reports whether the whole date is blocked.
func (r *SlotRule) IsBlocked(date string) bool {
	for _, d := range r.BlockedDates {
		if d == date {
			return true
		}
	}
	return false
}

// SaveSlotRuleRequest is the provider's payload for saving rules.
type SaveSlotRuleRequest struct {
	Days          []DayRule              `json:"days" binding:"required"`
	BlockedDates  []string               `json:"blockedDates"`
	ExcludedSlots map[string][]TimeRange `json:"excludedSlots"`
}

// AvailableSlot is one generated slot for a date.
type AvailableSlot struct {
	Start         string `json:"start"`
	End           string `json:"end"`
	Available     bool   `json:"available"`
	AlreadyBooked bool   `json:"alreadyBooked"`
}

// AvailabilityResponse is the availability of a provider on one date.
type AvailabilityResponse struct {
	Day   string          `json:"day"`
	Date  string          `json:"date"`
	Slots []AvailableSlot `json:"slots"`
}
