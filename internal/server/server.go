package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"tradingtools/internal/model"
	"tradingtools/internal/storage"
	"tradingtools/internal/tools"
)

const serverVersion = "0.1.0"

// Server exposes the toolset over the MCP protocol and records every
// invocation to an optional audit sink.
type Server struct {
	mcp     *mcpserver.MCPServer
	toolset *tools.Toolset
	audit   storage.Storage
	logger  *zap.Logger
}

// New wires the tool definitions to their handlers. audit may be nil.
func New(toolset *tools.Toolset, audit storage.Storage, logger *zap.Logger) *Server {
	s := &Server{
		mcp: mcpserver.NewMCPServer(
			"tradingtools", serverVersion,
			mcpserver.WithToolCapabilities(false),
			mcpserver.WithRecovery(),
		),
		toolset: toolset,
		audit:   audit,
		logger:  logger,
	}
	for _, def := range tools.Definitions() {
		switch def.Name {
		case tools.NameGetBalance:
			s.mcp.AddTool(def, s.handle(def.Name, s.getBalance))
		case tools.NameGetTokenPrice:
			s.mcp.AddTool(def, s.handle(def.Name, s.getTokenPrice))
		case tools.NameSwapTokens:
			s.mcp.AddTool(def, s.handle(def.Name, s.swapTokens))
		}
	}
	return s
}

// ServeStdio blocks reading MCP messages from stdin until EOF.
func (s *Server) ServeStdio() error {
	return mcpserver.ServeStdio(s.mcp)
}

// ServeSSE serves the MCP protocol over HTTP server-sent events until
// ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr string) error {
	sse := mcpserver.NewSSEServer(s.mcp)
	errCh := make(chan error, 1)
	go func() {
		errCh <- sse.Start(addr)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return sse.Shutdown(shutdownCtx)
	}
}

type toolFunc func(ctx context.Context, request mcp.CallToolRequest) (interface{}, error)

// handle adapts a typed tool function to an MCP handler: marshals the
// result, maps domain errors onto the error envelope, and records the
// invocation.
func (s *Server) handle(name string, fn toolFunc) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		payload, err := fn(ctx, request)
		if err != nil {
			s.logger.Warn("tool call failed",
				zap.String("tool", name),
				zap.String("kind", string(model.KindOf(err))),
				zap.Error(err))
			s.record(name, request, nil, err, time.Since(start))
			return errorResult(err), nil
		}
		body, merr := json.Marshal(payload)
		if merr != nil {
			wrapped := model.WrapErr(model.KindInternalError, merr, "encode %s result", name)
			s.record(name, request, nil, wrapped, time.Since(start))
			return errorResult(wrapped), nil
		}
		s.record(name, request, body, nil, time.Since(start))
		return mcp.NewToolResultText(string(body)), nil
	}
}

func (s *Server) getBalance(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	return s.toolset.GetBalance(ctx, stringArg(request, "address"), stringArg(request, "token_address"))
}

func (s *Server) getTokenPrice(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	return s.toolset.GetTokenPrice(ctx, stringArg(request, "token_identifier"), stringArg(request, "quote_currency"))
}

func (s *Server) swapTokens(ctx context.Context, request mcp.CallToolRequest) (interface{}, error) {
	slippage, err := decimalArg(request, "slippage")
	if err != nil {
		return nil, err
	}
	return s.toolset.SwapTokens(ctx,
		stringArg(request, "from_token"),
		stringArg(request, "to_token"),
		stringArg(request, "amount"),
		slippage,
		stringArg(request, "wallet_address"))
}

// errorResult renders a domain error as the {"kind","message"} envelope
// callers match on.
func errorResult(err error) *mcp.CallToolResult {
	body, merr := json.Marshal(struct {
		Kind    model.ErrorKind `json:"kind"`
		Message string          `json:"message"`
	}{Kind: model.KindOf(err), Message: model.MessageOf(err)})
	if merr != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError(string(body))
}

// record appends the invocation to the audit sink. Auditing is best
// effort and never blocks or fails the tool call.
func (s *Server) record(name string, request mcp.CallToolRequest, result json.RawMessage, callErr error, elapsed time.Duration) {
	if s.audit == nil {
		return
	}
	args, _ := json.Marshal(request.Params.Arguments)
	inv := model.ToolInvocation{
		Tool:       name,
		Arguments:  args,
		Result:     result,
		IsError:    callErr != nil,
		DurationMS: elapsed.Milliseconds(),
		Timestamp:  time.Now().Unix(),
	}
	if callErr != nil {
		inv.ErrorKind = string(model.KindOf(callErr))
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.audit.PutInvocations(ctx, []model.ToolInvocation{inv}); err != nil {
			s.logger.Warn("audit write failed", zap.String("tool", name), zap.Error(err))
		}
	}()
}
