package ledger

import "fmt"

const (
	// TokenDecimals is the number of base-unit decimals in one ORE.
	TokenDecimals = 11

	oneOre = 100_000_000_000
)

// FormatAmount renders base units as a fixed-point ORE string.
func FormatAmount(v uint64) string {
	return fmt.Sprintf("%d.%011d", v/oneOre, v%oneOre)
}
