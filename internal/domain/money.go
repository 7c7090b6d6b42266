package domain

import "github.com/shopspring/decimal"

// DefaultCurrencySign prefixes rendered amounts (quetzales)
const DefaultCurrencySign = "Q"

// FormatMoney renders an amount as "Q1,234.56"
func FormatMoney(sign string, amount decimal.Decimal) string {
	negative := amount.IsNegative()
	if negative {
		amount = amount.Neg()
	}

	s := amount.StringFixed(2)

	// Split at decimal point
	dotPos := len(s) - 3
	intPart := s[:dotPos]
	decPart := s[dotPos:]

	result := make([]byte, 0, len(intPart)+len(intPart)/3)
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result = append(result, ',')
		}
		result = append(result, byte(c))
	}

	prefix := sign
	if negative {
		prefix = "-" + sign
	}
	return prefix + string(result) + decPart
}
