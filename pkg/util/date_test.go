package util

import (
    "testing"
    "time"
)

func TestParseLookbackCalendarUnits(t *testing.T) {
    cases := map[string]time.Duration{
        "2d":   48 * time.Hour,
        "14d":  14 * 24 * time.Hour,
        "1wk":  7 * 24 * time.Hour,
        "3mo":  90 * 24 * time.Hour,
        "1y":   365 * 24 * time.Hour,
        "36h":  36 * time.Hour,
        " 1D ": 24 * time.Hour,
        "":     0,
    }
    for in, want := range cases {
        got, err := ParseLookback(in)
        if err != nil {
            t.Fatalf("ParseLookback(%q): %v", in, err)
        }
        if got != want {
            t.Fatalf("ParseLookback(%q) = %v, want %v", in, got, want)
        }
    }
}

func TestParseLookbackInvalid(t *testing.T) {
    for _, in := range []string{"xd", "-2d", "soon", "-5h"} {
        if _, err := ParseLookback(in); err == nil {
            t.Fatalf("expected error for %q", in)
        }
    }
}
