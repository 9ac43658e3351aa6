package tools

import "github.com/mark3labs/mcp-go/mcp"

// Tool names as exposed through the MCP protocol.
const (
	NameGetBalance    = "get_balance"
	NameGetTokenPrice = "get_token_price"
	NameSwapTokens    = "swap_tokens"
)

// Definitions returns the discovery document for the three trading tools.
// Descriptions are what the calling agent reads to decide which tool to use.
func Definitions() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(NameGetBalance,
			mcp.WithDescription("Get ETH or ERC20 token balance for a wallet address. Read-only."),
			mcp.WithString("address",
				mcp.Required(),
				mcp.Description("Ethereum wallet address (0x...)")),
			mcp.WithString("token_address",
				mcp.Description("ERC20 contract address or registered symbol (omit for native ETH)")),
		),
		mcp.NewTool(NameGetTokenPrice,
			mcp.WithDescription("Get the current price of a token derived from its canonical liquidity pool."),
			mcp.WithString("token_identifier",
				mcp.Required(),
				mcp.Description("Token symbol (e.g. ETH, USDC) or contract address")),
			mcp.WithString("quote_currency",
				mcp.Description("Quote currency: USD (default) or ETH"),
				mcp.Enum("USD", "ETH")),
		),
		mcp.NewTool(NameSwapTokens,
			mcp.WithDescription("Simulate a token swap from read-only chain state. No transaction is signed or submitted."),
			mcp.WithString("from_token",
				mcp.Required(),
				mcp.Description("Source token symbol or address")),
			mcp.WithString("to_token",
				mcp.Required(),
				mcp.Description("Destination token symbol or address")),
			mcp.WithString("amount",
				mcp.Required(),
				mcp.Description("Amount to swap, human-readable decimal string")),
			mcp.WithNumber("slippage",
				mcp.Required(),
				mcp.Description("Slippage tolerance in percent (e.g. 0.5 for 0.5%)")),
			mcp.WithString("wallet_address",
				mcp.Required(),
				mcp.Description("Wallet address initiating the swap")),
		),
	}
}
