package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextCode(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		last   string
		want   string
	}{
		{"empty table starts at 1", "PMT", "", "PMT0001"},
		{"increments the highest suffix", "PMT", "PMT0041", "PMT0042"},
		{"never reuses freed numbers", "STU", "STU0999", "STU1000"},
		{"grows past four digits", "TRN", "TRN9999", "TRN10000"},
		{"keeps counting after overflow", "TRN", "TRN10000", "TRN10001"},
		{"unparseable suffix restarts the sequence", "CRS", "CRSX", "CRS0001"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NextCode(tc.prefix, tc.last))
		})
	}
}
