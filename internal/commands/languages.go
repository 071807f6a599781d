package commands

import (
	"context"
	"fmt"

	"github.com/malonaz/proto-rules/internal/lang"
)

// Languages prints the identifiers of the stock language registry, or the
// gRPC-oriented one when grpc is set.
func (c *Controller) Languages(ctx context.Context, grpc bool) error {
	registry := lang.DefaultRegistry()
	if grpc {
		registry = lang.GRPCRegistry()
	}

	for _, id := range registry.IDs() {
		fmt.Println(id)
	}

	return nil
}
