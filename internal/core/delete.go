package core

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/pharmadb/internal/logging"
)

// DeleteRows removes every id from a subdomain's entry table. All requests
// run concurrently and are awaited together; one failure does not stop the
// others. The caller only learns that some failed; the ids are in the logs.
func (s *Service) DeleteRows(ctx context.Context, subdomain string, ids []string) error {
	table, err := resolve(subdomain)
	if err != nil {
		return err
	}
	return s.deleteFromTable(ctx, table, ids)
}

func (s *Service) deleteFromTable(ctx context.Context, table string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	logger := logging.WithFields(ctx, "table", table, "rows", len(ids))
	start := time.Now()

	// A plain Group: a failing delete must not cancel its siblings.
	var g errgroup.Group
	var failed atomic.Int64
	for _, id := range ids {
		g.Go(func() error {
			err := s.backend.DeleteRow(ctx, table, id)
			s.metrics.Delete(table, err)
			if err != nil {
				failed.Add(1)
				logger.Warn("delete failed", "id", id, "error", err)
			}
			return err
		})
	}
	_ = g.Wait()

	n := int(failed.Load())
	logger.Info("bulk delete finished",
		"succeeded", len(ids)-n,
		"failed", n,
		"duration_ms", since(start),
	)
	if n > 0 {
		return fmt.Errorf("%w (%d of %d)", ErrSomeDeletesFailed, n, len(ids))
	}
	return nil
}
