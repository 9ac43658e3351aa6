// Package storage persists tool-invocation audit records. The engine itself
// keeps no cross-request state; these sinks exist for observability and are
// always best-effort.
package storage

import (
	"context"

	"tradingtools/internal/model"
)

// Storage defines a sink for tool invocation records.
type Storage interface {
	PutInvocations(ctx context.Context, records []model.ToolInvocation) error
}
