package datapackage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	apperrors "mriopack/internal/errors"
)

// verifyWorkers bounds the number of archive handles open at once
const verifyWorkers = 4

// Verify re-hashes every listed resource and compares it with the manifest.
// Each check opens its own read-only handle on the archive.
func (p *Package) Verify(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(verifyWorkers)

	for _, res := range p.manifest.Resources {
		res := res
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var got string
			err := p.entry(res, func(r io.Reader) error {
				var err error
				got, err = md5Reader(r)
				return err
			})
			if err != nil {
				return err
			}
			if got != res.Hash {
				return loadErr(apperrors.NewIntegrityError(res.Name,
					fmt.Sprintf("hash mismatch for %s: manifest has %s, archive has %s", res.Path, res.Hash, got)))
			}
			p.logger.DebugContext(ctx, "resource verified", slog.String("resource", res.Name), slog.String("hash", got))
			return nil
		})
	}
	return g.Wait()
}
