package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mapdraw/internal/api"
	"github.com/matzehuels/mapdraw/pkg/cache"
	"github.com/matzehuels/mapdraw/pkg/pipeline"
	"github.com/matzehuels/mapdraw/pkg/store"
)

const (
	envRedisAddr = "MAPDRAW_REDIS_ADDR"
	envMongoURI  = "MAPDRAW_MONGO_URI"
)

type serveOpts struct {
	addr        string
	redisAddr   string
	redisPrefix string
	mongoURI    string
	mongoDB     string
	plansDir    string
	memory      bool
	datasets    string
	drawTimeout time.Duration
	noCache     bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	opts := serveOpts{
		addr:        ":8080",
		redisAddr:   os.Getenv(envRedisAddr),
		redisPrefix: appName + ":",
		mongoURI:    os.Getenv(envMongoURI),
		drawTimeout: 2 * time.Minute,
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plan API over HTTP",
		Long: `Serve the plan API over HTTP.

Plans are cached in Redis when --redis is set (shared across replicas) and in
the local cache directory otherwise. Drawn plans are stored in MongoDB when
--mongo is set, in memory with --memory, and as JSON files in --plans-dir
otherwise.

Environment:
  ` + envRedisAddr + `   default for --redis
  ` + envMongoURI + `    default for --mongo`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", opts.addr, "listen address")
	cmd.Flags().StringVar(&opts.redisAddr, "redis", opts.redisAddr, "Redis address for the plan cache")
	cmd.Flags().StringVar(&opts.redisPrefix, "redis-prefix", opts.redisPrefix, "key prefix in a shared Redis")
	cmd.Flags().StringVar(&opts.mongoURI, "mongo", opts.mongoURI, "MongoDB URI for plan storage")
	cmd.Flags().StringVar(&opts.mongoDB, "mongo-db", store.DefaultDatabase, "MongoDB database")
	cmd.Flags().StringVar(&opts.plansDir, "plans-dir", plansDir(), "directory for stored plans")
	cmd.Flags().BoolVar(&opts.memory, "memory", false, "keep plans in memory only")
	cmd.Flags().StringVar(&opts.datasets, "datasets", datasetDir(), "dataset directory")
	cmd.Flags().DurationVar(&opts.drawTimeout, "draw-timeout", opts.drawTimeout, "maximum time per draw (0 for none)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable plan caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	planCache, err := c.serveCache(ctx, opts)
	if err != nil {
		return err
	}
	var keyer cache.Keyer
	if opts.redisAddr != "" && opts.redisPrefix != "" {
		keyer = cache.NewScopedKeyer(nil, opts.redisPrefix)
	}
	runner := pipeline.NewRunner(planCache, keyer, logger)
	defer runner.Close()

	st, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer st.Close(context.Background())

	srv := api.New(api.Config{
		Runner:      runner,
		Store:       st,
		DatasetDir:  opts.datasets,
		Logger:      logger,
		DrawTimeout: opts.drawTimeout,
	})
	return srv.ListenAndServe(ctx, opts.addr)
}

func (c *CLI) serveCache(ctx context.Context, opts serveOpts) (cache.Cache, error) {
	logger := loggerFromContext(ctx)
	switch {
	case opts.noCache:
		logger.Info("plan cache", "backend", "none")
		return cache.NewNullCache(), nil
	case opts.redisAddr != "":
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		rc, err := cache.NewRedisCache(connectCtx, opts.redisAddr)
		if err != nil {
			return nil, fmt.Errorf("connect plan cache: %w", err)
		}
		logger.Info("plan cache", "backend", "redis", "addr", opts.redisAddr)
		return rc, nil
	default:
		logger.Info("plan cache", "backend", "file")
		return newCache(false)
	}
}

// openStore picks the plan store: MongoDB, memory, or a plan directory.
func openStore(ctx context.Context, opts serveOpts) (store.Store, error) {
	logger := loggerFromContext(ctx)
	switch {
	case opts.mongoURI != "":
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		ms, err := store.NewMongoStore(connectCtx, opts.mongoURI, opts.mongoDB)
		if err != nil {
			return nil, fmt.Errorf("connect plan store: %w", err)
		}
		logger.Info("plan store", "backend", "mongodb", "database", opts.mongoDB)
		return ms, nil
	case opts.memory:
		logger.Info("plan store", "backend", "memory")
		return store.NewMemoryStore(), nil
	default:
		fs, err := store.NewFileStore(opts.plansDir)
		if err != nil {
			return nil, fmt.Errorf("open plan store: %w", err)
		}
		logger.Info("plan store", "backend", "file", "dir", fs.Path())
		return fs, nil
	}
}
