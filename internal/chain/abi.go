package chain

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20ABIStringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

// Some older tokens return bytes32 for symbol instead of string.
const erc20ABIBytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const v2FactoryABIJSON = `[
  {"inputs": [{"type": "address"}, {"type": "address"}], "name": "getPair", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

const v2PairABIJSON = `[
  {"inputs": [], "name": "getReserves", "outputs": [{"internalType": "uint112", "name": "reserve0", "type": "uint112"}, {"internalType": "uint112", "name": "reserve1", "type": "uint112"}, {"internalType": "uint32", "name": "blockTimestampLast", "type": "uint32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "token0", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"}
]`

const v2RouterABIJSON = `[
  {"inputs": [{"type": "uint256"}, {"type": "uint256"}, {"type": "address[]"}, {"type": "address"}, {"type": "uint256"}], "name": "swapExactTokensForTokens", "outputs": [{"type": "uint256[]"}], "stateMutability": "nonpayable", "type": "function"}
]`

var (
	erc20ABIString      abi.ABI
	erc20ABIStringOnce  sync.Once
	erc20ABIStringErr   error
	erc20ABIBytes32     abi.ABI
	erc20ABIBytes32Once sync.Once
	erc20ABIBytes32Err  error
	v2FactoryABI        abi.ABI
	v2FactoryOnce       sync.Once
	v2FactoryErr        error
	v2PairABI           abi.ABI
	v2PairOnce          sync.Once
	v2PairErr           error
	v2RouterABI         abi.ABI
	v2RouterOnce        sync.Once
	v2RouterErr         error
)

func erc20ABIStringInstance() (abi.ABI, error) {
	erc20ABIStringOnce.Do(func() {
		erc20ABIString, erc20ABIStringErr = abi.JSON(strings.NewReader(erc20ABIStringJSON))
	})
	return erc20ABIString, erc20ABIStringErr
}

func erc20ABIBytes32Instance() (abi.ABI, error) {
	erc20ABIBytes32Once.Do(func() {
		erc20ABIBytes32, erc20ABIBytes32Err = abi.JSON(strings.NewReader(erc20ABIBytes32JSON))
	})
	return erc20ABIBytes32, erc20ABIBytes32Err
}

func v2FactoryABIInstance() (abi.ABI, error) {
	v2FactoryOnce.Do(func() {
		v2FactoryABI, v2FactoryErr = abi.JSON(strings.NewReader(v2FactoryABIJSON))
	})
	return v2FactoryABI, v2FactoryErr
}

func v2PairABIInstance() (abi.ABI, error) {
	v2PairOnce.Do(func() {
		v2PairABI, v2PairErr = abi.JSON(strings.NewReader(v2PairABIJSON))
	})
	return v2PairABI, v2PairErr
}

// V2RouterABIInstance is exported for callers that pack swap calldata for
// gas estimation.
func V2RouterABIInstance() (abi.ABI, error) {
	v2RouterOnce.Do(func() {
		v2RouterABI, v2RouterErr = abi.JSON(strings.NewReader(v2RouterABIJSON))
	})
	return v2RouterABI, v2RouterErr
}
