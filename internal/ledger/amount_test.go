package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   uint64
		expected string
	}{
		{0, "0.00000000000"},
		{1, "0.00000000001"},
		{123, "0.00000000123"},
		{oneOre, "1.00000000000"},
		{oneOre*2 + oneOre/2, "2.50000000000"},
		{41_000_000_000_000, "410.00000000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatAmount(tt.amount))
	}
}
