package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that travels as "HH:MM" (or "HH:MM:SS").
// On input it also accepts Go duration strings ("30m") and a bare number of minutes.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatClock(time.Duration(d)))
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var minutes float64
	if err := json.Unmarshal(b, &minutes); err == nil {
		*d = Duration(time.Duration(minutes * float64(time.Minute)))
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string or a number of minutes")
	}
	parsed, err := ParseClock(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// ParseClock parses "HH:MM", "HH:MM:SS" or a Go duration string.
func ParseClock(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if !strings.Contains(s, ":") {
		return time.ParseDuration(s)
	}
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	var total time.Duration
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || (i > 0 && n > 59) {
			return 0, fmt.Errorf("invalid duration %q", s)
		}
		total += time.Duration(n) * units[i]
	}
	if neg {
		total = -total
	}
	return total, nil
}

// FormatClock renders d as HH:MM, truncating seconds. Hours may exceed 24.
func FormatClock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	return fmt.Sprintf("%s%02d:%02d", sign, h, m)
}

// Minutes returns d in whole minutes.
func Minutes(d time.Duration) int64 { return int64(d / time.Minute) }
