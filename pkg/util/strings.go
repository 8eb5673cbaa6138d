package util

import (
    "crypto/subtle"
    "strings"
)

// SplitList splits a comma or whitespace separated list, trims and upper-cases each
// entry and drops blanks and duplicates.
func SplitList(s string) []string {
    fields := strings.FieldsFunc(s, func(r rune) bool {
        return r == ',' || r == ' ' || r == '\n' || r == '\t'
    })
    seen := make(map[string]struct{}, len(fields))
    out := make([]string, 0, len(fields))
    for _, f := range fields {
        f = strings.ToUpper(strings.TrimSpace(f))
        if f == "" {
            continue
        }
        if _, ok := seen[f]; ok {
            continue
        }
        seen[f] = struct{}{}
        out = append(out, f)
    }
    return out
}

// SecretMatches compares a presented secret in constant time. An empty expected secret
// disables the check.
func SecretMatches(expected, presented string) bool {
    if expected == "" {
        return true
    }
    return subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) == 1
}
