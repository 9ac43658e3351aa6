package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TokenDescriptor identifies a token and its display precision. Native ETH
// carries the reserved pseudo-address and Native=true. Immutable once built.
type TokenDescriptor struct {
	Symbol   string         `json:"symbol"`
	Address  common.Address `json:"address"`
	Decimals uint8          `json:"decimals"`
	Native   bool           `json:"native,omitempty"`
}

// PoolReserves is a snapshot of one liquidity pool, fetched fresh per
// request. Reserves are raw smallest-unit integers; each side's decimals
// come from its descriptor.
type PoolReserves struct {
	Base         TokenDescriptor
	Quote        TokenDescriptor
	ReserveBase  *big.Int
	ReserveQuote *big.Int
}
