package server

import (
	"encoding/json"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/shopspring/decimal"

	"tradingtools/internal/model"
)

func stringArg(request mcp.CallToolRequest, key string) string {
	if value, ok := request.Params.Arguments[key].(string); ok {
		return value
	}
	return ""
}

// decimalArg reads a numeric argument as an exact decimal. JSON numbers
// arrive as float64; the shortest round-trip string recovers the literal
// the caller wrote without binary-float drift.
func decimalArg(request mcp.CallToolRequest, key string) (decimal.Decimal, error) {
	switch value := request.Params.Arguments[key].(type) {
	case string:
		d, err := decimal.NewFromString(value)
		if err != nil {
			return decimal.Decimal{}, model.Errf(model.KindInvalidSlippage, "invalid %s %q", key, value)
		}
		return d, nil
	case float64:
		d, err := decimal.NewFromString(strconv.FormatFloat(value, 'f', -1, 64))
		if err != nil {
			return decimal.Decimal{}, model.Errf(model.KindInvalidSlippage, "invalid %s %v", key, value)
		}
		return d, nil
	case json.Number:
		d, err := decimal.NewFromString(value.String())
		if err != nil {
			return decimal.Decimal{}, model.Errf(model.KindInvalidSlippage, "invalid %s %q", key, value)
		}
		return d, nil
	default:
		return decimal.Decimal{}, model.Errf(model.KindInvalidSlippage, "missing or invalid %s", key)
	}
}
