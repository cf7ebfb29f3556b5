// Package mock provides test doubles for lokalku interfaces using function fields.
package mock

import (
	"context"

	"github.com/lokalku/lokalku"
)

// Interface compliance checks.
var (
	_ lokalku.Provider      = (*Provider)(nil)
	_ lokalku.SnapshotStore = (*SnapshotStore)(nil)
	_ lokalku.KeyValue      = (*KeyValue)(nil)
)

// Provider is a test double for lokalku.Provider.
// Set ReplyFn before calling Reply.
type Provider struct {
	ReplyFn func(ctx context.Context, req lokalku.Request) (lokalku.Response, error)
}

// Reply delegates to ReplyFn.
func (p *Provider) Reply(ctx context.Context, req lokalku.Request) (lokalku.Response, error) {
	return p.ReplyFn(ctx, req)
}
