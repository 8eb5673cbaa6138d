package util

import (
    "fmt"
    "strconv"
    "strings"
    "time"
)

const day = 24 * time.Hour

// ParseLookback parses chart-style spans: Go durations ("36h", "90m") plus the
// calendar units d, wk, mo and y ("2d", "1wk", "3mo", "1y"). Months count 30 days and
// years 365.
func ParseLookback(s string) (time.Duration, error) {
    s = strings.TrimSpace(strings.ToLower(s))
    if s == "" || s == "0" {
        return 0, nil
    }
    for _, u := range []struct {
        suffix string
        unit   time.Duration
    }{
        {"wk", 7 * day},
        {"mo", 30 * day},
        {"d", day},
        {"y", 365 * day},
    } {
        if !strings.HasSuffix(s, u.suffix) {
            continue
        }
        n, err := strconv.Atoi(strings.TrimSuffix(s, u.suffix))
        if err != nil || n < 0 {
            return 0, fmt.Errorf("invalid lookback %q", s)
        }
        return time.Duration(n) * u.unit, nil
    }
    d, err := time.ParseDuration(s)
    if err != nil || d < 0 {
        return 0, fmt.Errorf("invalid lookback %q", s)
    }
    return d, nil
}
