package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tradingtools/internal/chain"
	"tradingtools/internal/config"
	"tradingtools/internal/model"
	"tradingtools/internal/server"
	"tradingtools/internal/storage"
	"tradingtools/internal/storage/postgres"
	"tradingtools/internal/token"
	"tradingtools/internal/tools"
)

func main() {
	root := &cobra.Command{
		Use:          "tradingtools",
		Short:        "Ethereum trading tool server",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the trading tools over MCP",
		RunE:  runServe,
	}

	serveCmd.Flags().String("rpc", "https://eth.llamarpc.com", "Ethereum RPC URL")
	serveCmd.Flags().String("transport", "stdio", "transport (stdio or sse)")
	serveCmd.Flags().String("sse-addr", ":8080", "listen address for the sse transport")
	serveCmd.Flags().String("audit-out", "", "optional audit JSONL path")
	serveCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for the audit trail")
	serveCmd.Flags().Int("max-retries", 3, "maximum RPC retry attempts")
	serveCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	serveCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(serveCmd)

	callCmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Invoke a tool once and print the result",
		Args:  cobra.ExactArgs(1),
		RunE:  runCall,
	}

	callCmd.Flags().String("rpc", "https://eth.llamarpc.com", "Ethereum RPC URL")
	callCmd.Flags().String("args", "{}", "tool arguments as a JSON object")
	callCmd.Flags().Int("max-retries", 3, "maximum RPC retry attempts")
	callCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	callCmd.Flags().String("log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(callCmd)

	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "List the available tools",
		RunE:  runTools,
	}

	root.AddCommand(toolsCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	audit, err := newAuditSink(ctx, cfg)
	if err != nil {
		return err
	}
	if closer, ok := audit.(interface{ Close() }); ok {
		defer closer.Close()
	}

	registry := token.NewRegistry()
	toolset := tools.New(chainClient, registry, logger)
	srv := server.New(toolset, audit, logger)

	chainID := "unknown"
	if id, err := chainClient.ChainID(ctx); err == nil {
		chainID = id.String()
	} else {
		logger.Warn("chain id lookup failed", zap.Error(err))
	}

	logger.Info("server start",
		zap.String("rpc", cfg.RPCURL),
		zap.String("chain_id", chainID),
		zap.String("transport", cfg.Transport),
		zap.Int("tokens", len(registry.Symbols())),
	)

	if cfg.Transport == "sse" {
		return srv.ServeSSE(ctx, cfg.SSEAddr)
	}
	return srv.ServeStdio()
}

func newAuditSink(ctx context.Context, cfg config.Config) (storage.Storage, error) {
	if cfg.PostgresDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, nil
	}
	if cfg.AuditOut != "" {
		return storage.NewJsonlStorage(cfg.AuditOut), nil
	}
	return nil, nil
}

func runCall(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	rawArgs, _ := cmd.Flags().GetString("args")
	var toolArgs map[string]interface{}
	if err := json.Unmarshal([]byte(rawArgs), &toolArgs); err != nil {
		return fmt.Errorf("parse args: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	chainClient, err := chain.NewClient(ctx, cfg.RPCURL, chain.Options{
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Logger:       logger,
	})
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer chainClient.Close()

	toolset := tools.New(chainClient, token.NewRegistry(), logger)

	result, err := invoke(ctx, toolset, args[0], toolArgs)
	if err != nil {
		body, merr := json.Marshal(struct {
			Kind    model.ErrorKind `json:"kind"`
			Message string          `json:"message"`
		}{Kind: model.KindOf(err), Message: model.MessageOf(err)})
		if merr != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, string(body))
		os.Exit(1)
	}

	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func invoke(ctx context.Context, toolset *tools.Toolset, name string, args map[string]interface{}) (interface{}, error) {
	str := func(key string) string {
		s, _ := args[key].(string)
		return s
	}
	switch name {
	case tools.NameGetBalance:
		return toolset.GetBalance(ctx, str("address"), str("token_address"))
	case tools.NameGetTokenPrice:
		return toolset.GetTokenPrice(ctx, str("token_identifier"), str("quote_currency"))
	case tools.NameSwapTokens:
		slippage, err := parseSlippage(args["slippage"])
		if err != nil {
			return nil, err
		}
		return toolset.SwapTokens(ctx, str("from_token"), str("to_token"), str("amount"), slippage, str("wallet_address"))
	default:
		return nil, fmt.Errorf("unknown tool %q", name)
	}
}

func parseSlippage(value interface{}) (decimal.Decimal, error) {
	switch typed := value.(type) {
	case string:
		return decimal.NewFromString(typed)
	case float64:
		return decimal.NewFromFloat(typed), nil
	case nil:
		return decimal.Decimal{}, model.Errf(model.KindInvalidSlippage, "slippage is required")
	default:
		return decimal.Decimal{}, model.Errf(model.KindInvalidSlippage, "invalid slippage %v", value)
	}
}

func runTools(_ *cobra.Command, _ []string) error {
	body, err := json.MarshalIndent(tools.Definitions(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(body))
	return nil
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
