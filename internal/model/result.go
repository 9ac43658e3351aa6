package model

import "encoding/json"

// EstimateSource says which path produced a swap output estimate. A
// reserve-backed number and a fixed-discount approximation carry materially
// different accuracy, so callers always see which one they got.
type EstimateSource string

const (
	EstimateFromReserves EstimateSource = "reserves"
	EstimateFromFallback EstimateSource = "fallback"
)

// BalanceResult is the get_balance response body.
type BalanceResult struct {
	Address   string `json:"address"`
	Balance   string `json:"balance"`
	Decimals  uint8  `json:"decimals"`
	Raw       string `json:"raw"`
	TokenType string `json:"token_type"`
}

// PriceResult is the get_token_price response body.
type PriceResult struct {
	QuoteCurrency string `json:"quote_currency"`
	Price         string `json:"price"`
	Timestamp     int64  `json:"timestamp"`
}

// SwapSimulationResult is the swap_tokens response body. Business outcomes
// such as insufficient balance set SimulationSuccess=false with Error
// populated; the record itself is still a successful tool response.
type SwapSimulationResult struct {
	FromToken          string         `json:"from_token"`
	ToToken            string         `json:"to_token"`
	InputAmount        string         `json:"input_amount"`
	EstimatedOutput    string         `json:"estimated_output"`
	MinOutput          string         `json:"min_output"`
	GasCostNative      string         `json:"gas_cost_native"`
	SlippagePercentage string         `json:"slippage_percentage"`
	SimulationSuccess  bool           `json:"simulation_success"`
	Error              *string        `json:"error"`
	EstimateSource     EstimateSource `json:"estimate_source,omitempty"`
	Notes              []string       `json:"notes,omitempty"`
}

// ToolInvocation is one audit record per tool call.
type ToolInvocation struct {
	Tool       string          `json:"tool"`
	Arguments  json.RawMessage `json:"arguments,omitempty"`
	Result     json.RawMessage `json:"result,omitempty"`
	IsError    bool            `json:"is_error"`
	ErrorKind  string          `json:"error_kind,omitempty"`
	DurationMS int64           `json:"duration_ms"`
	Timestamp  int64           `json:"ts"`
}
