package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntryID(t *testing.T) {
	tests := []struct {
		seq  uint64
		want string
	}{
		{1, "MOV-000001"},
		{99, "MOV-000099"},
		{1234567, "MOV-1234567"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatEntryID(tt.seq))
	}
}

func TestFormatSessionID(t *testing.T) {
	assert.Equal(t, "SES-0001", FormatSessionID(1))
	assert.Equal(t, "SES-0120", FormatSessionID(120))
}

func TestParseEntryID(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{"MOV-000001", 1},
		{"MOV-000099", 99},
		{"MOV-1234567", 1234567},
	}
	for _, tt := range tests {
		seq, err := ParseEntryID(tt.input)
		require.NoError(t, err, "input: %s", tt.input)
		assert.Equal(t, tt.want, seq)
	}
}

func TestParseEntryID_Errors(t *testing.T) {
	badInputs := []string{
		"",
		"MOV-",
		"SES-0001",
		"MOV-abc",
		"000001",
	}
	for _, input := range badInputs {
		_, err := ParseEntryID(input)
		assert.Error(t, err, "expected error for input: %s", input)
	}
}

func TestParseSessionID(t *testing.T) {
	seq, err := ParseSessionID("SES-0042")
	require.NoError(t, err)
	assert.Equal(t, 42, seq)

	_, err = ParseSessionID("MOV-000001")
	assert.Error(t, err)
}
