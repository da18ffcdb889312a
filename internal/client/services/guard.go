package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/membrocelestial/internal/client/client"
)

// cancelled reports whether the consumer of ctx went away. Deadlines are
// not cancellation: they surface as transport failures.
func cancelled(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func staleLoad(what string, gen uint64) error {
	return client.NewError(client.KindStale, fmt.Errorf("%s load %d superseded", what, gen))
}

func unauthenticated() error {
	return client.NewError(client.KindUnauthenticated, nil)
}
