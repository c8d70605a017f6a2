package slip

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// The oracle reports the same fact in different shapes depending on the
// bank. Each field is read by trying its strategies in order; the first one
// that yields a value wins.

type stringStrategy func(data map[string]interface{}) string

type amountStrategy func(data map[string]interface{}) (decimal.Decimal, bool)

var (
	amountStrategies = []amountStrategy{
		pathAmount("amount", "amount"),
		pathAmount("amount"),
	}

	senderNameStrategies = []stringStrategy{
		pathString("sender", "account", "name", "th"),
		pathString("sender", "account", "name", "en"),
		pathString("sender", "account", "name"),
	}

	receiverBankIDStrategies = []stringStrategy{
		pathString("receiver", "bank", "id"),
		pathString("receiver", "bank", "short_name"),
		pathString("receiver", "bank", "code"),
	}

	receiverBankNameStrategies = []stringStrategy{
		pathString("receiver", "bank", "name"),
	}

	receiverNameStrategies = []stringStrategy{
		pathString("receiver", "account", "name", "th"),
		pathString("receiver", "account", "name", "en"),
		pathString("receiver", "account", "name"),
		pathString("receiver", "displayName"),
		pathString("receiver", "name"),
	}

	maskedAccountStrategies = []stringStrategy{
		pathString("receiver", "account", "proxy", "account"),
		pathString("receiver", "account", "bank", "account"),
	}

	referenceStrategies = []stringStrategy{
		pathString("transRef"),
	}
)

// normalize turns the oracle's data object into SlipData.
func normalize(data map[string]interface{}) *SlipData {
	out := &SlipData{
		Reference:             firstString(data, referenceStrategies),
		SenderName:            firstString(data, senderNameStrategies),
		ReceiverName:          firstString(data, receiverNameStrategies),
		ReceiverBankID:        firstString(data, receiverBankIDStrategies),
		ReceiverBankName:      firstString(data, receiverBankNameStrategies),
		ReceiverMaskedAccount: firstString(data, maskedAccountStrategies),
		Raw:                   data,
	}
	for _, s := range amountStrategies {
		if amt, ok := s(data); ok {
			out.Amount = amt
			out.HasAmount = true
			break
		}
	}
	return out
}

func firstString(data map[string]interface{}, strategies []stringStrategy) string {
	for _, s := range strategies {
		if v := s(data); v != "" {
			return v
		}
	}
	return ""
}

func pathString(path ...string) stringStrategy {
	return func(data map[string]interface{}) string {
		v, ok := lookup(data, path...)
		if !ok {
			return ""
		}
		return scalarString(v)
	}
}

func pathAmount(path ...string) amountStrategy {
	return func(data map[string]interface{}) (decimal.Decimal, bool) {
		v, ok := lookup(data, path...)
		if !ok {
			return decimal.Zero, false
		}
		return toDecimal(v)
	}
}

func lookup(data map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = data
	for _, key := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, true
}

// scalarString renders strings and numbers; objects and arrays are not
// names and yield "".
func scalarString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64, int, int64, bool:
		return fmt.Sprint(t)
	default:
		return ""
	}
}

func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(t))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
