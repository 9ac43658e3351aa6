package token

import (
	"context"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"tradingtools/internal/model"
)

// IdentifierKind tags how a user-supplied token identifier was classified.
type IdentifierKind int

const (
	IdentifierSymbol IdentifierKind = iota
	IdentifierAddress
)

// Identifier is the classified form of a user-supplied token string. All
// call sites go through Classify instead of sniffing strings themselves.
type Identifier struct {
	Kind    IdentifierKind
	Symbol  string
	Address common.Address
}

var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{0,15}$`)

// Classify decides whether an identifier is a contract address (one leading
// 0x marker plus 40 hex characters, checksum not enforced) or a symbol.
// Anything else is an unknown token.
func Classify(identifier string) (Identifier, error) {
	trimmed := strings.TrimSpace(identifier)
	if common.IsHexAddress(trimmed) {
		return Identifier{Kind: IdentifierAddress, Address: common.HexToAddress(trimmed)}, nil
	}
	if symbolPattern.MatchString(trimmed) {
		return Identifier{Kind: IdentifierSymbol, Symbol: strings.ToUpper(trimmed)}, nil
	}
	return Identifier{}, model.Errf(model.KindUnknownToken,
		"%q is neither a token symbol nor a hex address", identifier)
}

// MetadataProvider is the optional on-chain introspection the resolver may
// use before giving up on an unregistered address.
type MetadataProvider interface {
	TokenMetadata(ctx context.Context, token common.Address) (symbol string, decimals uint8, err error)
}

// Resolver maps identifiers to descriptors, falling back to on-chain
// metadata for addresses the registry has never seen.
type Resolver struct {
	registry *Registry
	meta     MetadataProvider
	logger   *zap.Logger
}

// NewResolver builds a resolver. meta may be nil when no introspection is
// available.
func NewResolver(registry *Registry, meta MetadataProvider, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{registry: registry, meta: meta, logger: logger}
}

// Registry exposes the shared registry for components that need direct
// lookups of well-known tokens.
func (r *Resolver) Registry() *Registry {
	return r.registry
}

// Resolve turns a symbol or address into a descriptor. Unregistered
// addresses are introspected on-chain when possible and the result is
// registered so the next lookup hits the map.
func (r *Resolver) Resolve(ctx context.Context, identifier string) (model.TokenDescriptor, error) {
	id, err := Classify(identifier)
	if err != nil {
		return model.TokenDescriptor{}, err
	}

	switch id.Kind {
	case IdentifierSymbol:
		d, ok := r.registry.BySymbol(id.Symbol)
		if !ok {
			return model.TokenDescriptor{}, model.Errf(model.KindUnknownToken,
				"unknown token symbol %q", identifier)
		}
		return d, nil

	default:
		if d, ok := r.registry.ByAddress(id.Address); ok {
			return d, nil
		}
		if r.meta == nil {
			return model.TokenDescriptor{}, model.Errf(model.KindTokenNotRegistered,
				"token %s is not registered", id.Address.Hex())
		}
		symbol, decimals, err := r.meta.TokenMetadata(ctx, id.Address)
		if err != nil {
			return model.TokenDescriptor{}, model.WrapErr(model.KindTokenNotRegistered, err,
				"token %s is not registered and metadata lookup failed", id.Address.Hex())
		}
		if symbol == "" {
			symbol = "UNKNOWN"
		}
		d := model.TokenDescriptor{Symbol: symbol, Address: id.Address, Decimals: decimals}
		r.registry.Register(d)
		r.logger.Info("registered token from chain metadata",
			zap.String("address", id.Address.Hex()),
			zap.String("symbol", symbol),
			zap.Uint8("decimals", decimals),
		)
		return d, nil
	}
}
