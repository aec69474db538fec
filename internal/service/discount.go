package service

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Discount struct {
	Code        string
	Rate        decimal.Decimal // multiplier applied to the base amount
	Description string
}

// Codes are reusable across orders; an order can only use one once since
// a free order leaves the pending state.
var discountCodes = map[string]Discount{
	"JOYFU05": {
		Code:        "JOYFU05",
		Rate:        decimal.Zero,
		Description: "免費優惠",
	},
}

func lookupDiscount(code string) (Discount, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Discount{}, false
	}
	d, ok := discountCodes[code]
	return d, ok
}

// Apply returns round(amount * rate) in whole currency units.
func (d Discount) Apply(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(d.Rate).Round(0).IntPart()
}
