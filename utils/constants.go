// File: utils/constants.go
package utils

import "time"

// SlotRuleCacheTTL is the time-to-live for cached provider slot rules.
const SlotRuleCacheTTL = 10 * time.Minute

const (
	// DateLayout is the calendar date format used on the wire and in storage.
	DateLayout = "2006-01-02"
	// ClockLayout is the HH:MM wall-clock format.
	ClockLayout = "15:04"
)
