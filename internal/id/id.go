package id

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	entryPrefix   = "MOV-"
	sessionPrefix = "SES-"
)

// FormatEntryID returns a ledger entry ID like "MOV-000001".
func FormatEntryID(seq uint64) string {
	return fmt.Sprintf("%s%06d", entryPrefix, seq)
}

// FormatSessionID returns a shift ID like "SES-0001".
func FormatSessionID(seq int) string {
	return fmt.Sprintf("%s%04d", sessionPrefix, seq)
}

// ParseEntryID parses "MOV-000001" into its sequence number.
func ParseEntryID(id string) (uint64, error) {
	digits, ok := strings.CutPrefix(id, entryPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid entry ID format: %q", id)
	}
	seq, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in entry ID %q: %w", id, err)
	}
	return seq, nil
}

// ParseSessionID parses "SES-0001" into its sequence number.
func ParseSessionID(id string) (int, error) {
	digits, ok := strings.CutPrefix(id, sessionPrefix)
	if !ok || digits == "" {
		return 0, fmt.Errorf("invalid session ID format: %q", id)
	}
	seq, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("invalid sequence in session ID %q: %w", id, err)
	}
	return seq, nil
}
