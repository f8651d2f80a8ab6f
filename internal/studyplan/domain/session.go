package domain

import (
	"errors"
	"time"
)

// Session durations are bounded; anything shorter is not worth a slot
// and anything longer exceeds a sustainable study day.
const (
	MinSessionHours = 0.5
	MaxSessionHours = 4.0
)

// DateLayout is the wire format for session dates.
const DateLayout = "2006-01-02"

var (
	ErrInvalidSessionDay      = errors.New("session day must be 1 or greater")
	ErrNoSessionTopics        = errors.New("session needs at least one topic")
	ErrInvalidSessionDuration = errors.New("session duration must be between 0.5 and 4 hours")
)

// FocusLevel is the intensity recommended for a session.
type FocusLevel string

const (
	FocusLow    FocusLevel = "low"
	FocusMedium FocusLevel = "medium"
	FocusHigh   FocusLevel = "high"
)

func (f FocusLevel) String() string { return string(f) }

// ParseFocusLevel converts a string into a FocusLevel.
func ParseFocusLevel(s string) (FocusLevel, error) {
	switch FocusLevel(s) {
	case FocusLow, FocusMedium, FocusHigh:
		return FocusLevel(s), nil
	default:
		return "", errors.New("invalid focus level: " + s)
	}
}

// StudySession is one day-level block of a schedule. Sessions serialize
// into the schedule row, so the field names are part of the API contract.
type StudySession struct {
	Day           int        `json:"day"`
	Date          string     `json:"date"`
	DayName       string     `json:"day_name"`
	Topics        []string   `json:"topics"`
	DurationHours float64    `json:"duration_hours"`
	FocusLevel    FocusLevel `json:"focus_level"`
	Tips          string     `json:"tips"`
}

// NewStudySession builds a validated session. The day name is derived
// from the date, never taken from the caller.
func NewStudySession(day int, date time.Time, topics []string, durationHours float64, focus FocusLevel, tips string) (StudySession, error) {
	if day < 1 {
		return StudySession{}, ErrInvalidSessionDay
	}
	if len(topics) == 0 {
		return StudySession{}, ErrNoSessionTopics
	}
	if durationHours < MinSessionHours || durationHours > MaxSessionHours {
		return StudySession{}, ErrInvalidSessionDuration
	}

	return StudySession{
		Day:           day,
		Date:          date.Format(DateLayout),
		DayName:       date.Weekday().String(),
		Topics:        topics,
		DurationHours: durationHours,
		FocusLevel:    focus,
		Tips:          tips,
	}, nil
}
