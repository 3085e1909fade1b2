package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/okanda/rosviz/internal/server"
	"github.com/okanda/rosviz/pkg/cache"
	"github.com/okanda/rosviz/pkg/pipeline"
	"github.com/okanda/rosviz/pkg/store"
)

// newServeCmd creates the serve command: expose the pipeline over HTTP.
func newServeCmd() *cobra.Command {
	var opts sourceOpts
	var (
		addr      string
		redisAddr string
		mongoURI  string
	)

	cmd := &cobra.Command{
		Use:   "serve <file>",
		Short: "Serve the node graph over HTTP",
		Long: `Start an HTTP server bound to one graph source. The server exposes the
imported graph, its layout, named paths, DOT/SVG exports, and Prometheus
metrics. With --mongo-uri it also stores named snapshots.

By default pipeline results are cached on disk; --redis-addr switches to a
shared Redis cache for multi-instance deployments.

Examples:
  rosviz serve architecture.yaml --addr :8080
  rosviz serve architecture.yaml --redis-addr localhost:6379
  rosviz serve architecture.yaml --mongo-uri mongodb://localhost:27017`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			c, err := serveCache(ctx, opts.noCache, redisAddr)
			if err != nil {
				return err
			}
			var keyer cache.Keyer
			if redisAddr != "" {
				// Namespace keys per source so instances sharing one
				// Redis stay isolated.
				keyer = cache.NewScopedKeyer(nil, cache.Hash([]byte(args[0]))[:12]+":")
			}
			runner := pipeline.NewRunner(c, keyer, logger)
			defer runner.Close()

			var st store.Store
			if mongoURI != "" {
				ms, err := store.NewMongoStore(ctx, store.MongoConfig{URI: mongoURI})
				if err != nil {
					return err
				}
				defer ms.Close(ctx)
				st = ms
			}

			srv := server.New(server.Config{
				Source:     args[0],
				TargetPath: opts.targetPath,
				Addr:       addr,
			}, runner, st, logger)

			return srv.ListenAndServe(ctx)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&redisAddr, "redis-addr", "", "Redis address for a shared cache (default: file cache)")
	cmd.Flags().StringVar(&mongoURI, "mongo-uri", "", "MongoDB URI for snapshot storage (default: snapshots disabled)")
	return cmd
}

// serveCache picks the cache backend for the server: Redis when configured,
// otherwise the per-user file cache.
func serveCache(ctx context.Context, noCache bool, redisAddr string) (cache.Cache, error) {
	if redisAddr != "" {
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: redisAddr})
	}
	return newCache(noCache), nil
}
