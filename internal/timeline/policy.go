package timeline

import (
	"fmt"
	"strings"
)

// ReminderPolicy decides which minutes of a task get a spoken
// "N minutes left" reminder.
type ReminderPolicy int

const (
	// EveryMinute reminds at the start of every minute.
	EveryMinute ReminderPolicy = iota
	// SkipFinal reminds every minute except the last, which has the countdown.
	SkipFinal
	// EveryOther reminds on odd minutes, never the first or the last.
	EveryOther
	// NoReminders never reminds.
	NoReminders
)

// DefaultReminderPolicy is EveryMinute.
const DefaultReminderPolicy = EveryMinute

var policyNames = map[ReminderPolicy]string{
	EveryMinute: "every-minute",
	SkipFinal:   "skip-final",
	EveryOther:  "every-other",
	NoReminders: "none",
}

// String implements fmt.Stringer.
func (p ReminderPolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("ReminderPolicy(%d)", int(p))
}

// ParseReminderPolicy accepts the names printed by String.
func ParseReminderPolicy(s string) (ReminderPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultReminderPolicy, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown reminder policy %q (want every-minute, skip-final, every-other or none)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (p ReminderPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *ReminderPolicy) UnmarshalText(b []byte) error {
	v, err := ParseReminderPolicy(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Remind reports whether minute (0-indexed) of a task lasting duration
// minutes gets a reminder.
func (p ReminderPolicy) Remind(minute, duration int) bool {
	switch p {
	case EveryMinute:
		return true
	case SkipFinal:
		return minute < duration-1
	case EveryOther:
		return minute%2 == 1 && minute < duration-1
	default:
		return false
	}
}
