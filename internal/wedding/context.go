// Copyright (C) 2024 the quixsi maintainers
// See root-dir/LICENSE for more information

package wedding

import (
	"context"
	"fmt"
)

// MissingProviderError reports use of the store outside of an active
// Provider: a context without one, a nil Provider or a closed one.
type MissingProviderError struct {
	Op string
}

func (e *MissingProviderError) Error() string {
	if e.Op == "" {
		return "wedding: no active provider"
	}
	return fmt.Sprintf("wedding: %s called without an active provider", e.Op)
}

type providerKey struct{}

func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

func FromContext(ctx context.Context) (*Provider, error) {
	p, ok := ctx.Value(providerKey{}).(*Provider)
	if !ok || p == nil {
		return nil, &MissingProviderError{}
	}
	return p, nil
}

// MustFromContext is FromContext for callers that cannot work without a
// Provider. It panics with a *MissingProviderError.
func MustFromContext(ctx context.Context) *Provider {
	p, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return p
}
