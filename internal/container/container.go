package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"pokegram/feed/internal/cache"
	"pokegram/feed/internal/client"
	"pokegram/feed/internal/config"
	"pokegram/feed/internal/domain"
	"pokegram/feed/internal/interaction"
	"pokegram/feed/internal/pagination"
	"pokegram/feed/internal/recent"
	"pokegram/feed/internal/service"
	"pokegram/feed/internal/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config  *config.Config
	Client  client.PokeAPIClient
	Service *service.Service

	Interactions   *interaction.Store
	RecentSearches *recent.Store
	Posts          *pagination.Controller
	Stories        *pagination.Controller

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	if cfg.Storage.Driver == "redis" || cfg.Cache.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		log.Info("✅ Connected to Redis successfully")
		container.redis = rdb
	}

	var store storage.Storage
	switch cfg.Storage.Driver {
	case "redis":
		store = storage.NewRedisStorage(container.redis)
	case "postgres":
		db, err := pgxpool.New(ctx, cfg.Database.DSN())
		if err != nil {
			container.Close()
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		container.db = db

		store, err = storage.NewPostgresStorage(ctx, db)
		if err != nil {
			container.Close()
			return nil, err
		}
		log.Info("✅ Connected to Postgres successfully")
	default:
		store = storage.NewMemoryStorage()
	}
	log.Infof("Using %s storage for recent searches", cfg.Storage.Driver)

	var detailCache cache.DetailCache
	if cfg.Cache.Enabled {
		detailCache = cache.NewRedisDetailCache(container.redis, time.Duration(cfg.Cache.DetailTTL)*time.Second)
	}

	container.Client = client.NewPokeAPIClient(cfg.PokeAPI)
	container.Service = service.NewService(container.Client, detailCache)

	container.Interactions = interaction.NewStore()
	container.RecentSearches = recent.NewStore(store, cfg.Storage.RecentKey)
	container.Posts = pagination.NewController("posts", container.Service.Fetcher(), cfg.Feed.PostPageSize)
	container.Stories = pagination.NewController("stories", container.Service.Fetcher(), cfg.Feed.StoryPageSize)

	return container, nil
}

// Run loads what the home screen shows on open: recent searches, the first
// story and post pages, and the configured search, if any.
func (c *Container) Run(ctx context.Context) error {
	recentEntries := c.RecentSearches.Load(ctx)
	log.Infof("Loaded %d recent searches", len(recentEntries))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.Stories.FetchNext(gctx)
		return err
	})
	g.Go(func() error {
		_, err := c.Posts.FetchNext(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load home feed: %w", err)
	}

	log.Infof("✅ Loaded %d stories and %d posts (%d available)",
		c.Stories.Len(), c.Posts.Len(), c.Posts.TotalCount())

	if query := c.Config.Feed.SearchQuery; query != "" {
		if err := c.search(ctx, query); err != nil {
			return err
		}
	}

	return nil
}

// ScrollPosts loads the next feed page once pos is within feed.post_threshold
// of the end. It reports whether a fetch ran.
func (c *Container) ScrollPosts(ctx context.Context, pos pagination.ScrollPosition) (bool, error) {
	return c.Posts.MaybeFetchNext(ctx, pos, c.Config.Feed.PostThreshold)
}

// ScrollStories is ScrollPosts for the story carousel, using feed.story_threshold.
func (c *Container) ScrollStories(ctx context.Context, pos pagination.ScrollPosition) (bool, error) {
	return c.Stories.MaybeFetchNext(ctx, pos, c.Config.Feed.StoryThreshold)
}

func (c *Container) search(ctx context.Context, query string) error {
	results, err := c.Service.Search(ctx, query, c.Config.Feed.SearchLimit)
	if err != nil {
		return fmt.Errorf("search %q failed: %w", query, err)
	}

	log.Infof("🔍 Search %q returned %d results", query, len(results))
	for _, r := range results {
		log.Infof("  #%d %s verified=%t types=%v", r.ID, r.Name, r.IsVerified(), r.Types)
	}

	if len(results) == 0 {
		return nil
	}

	if _, err := c.RecentSearches.Record(ctx, domain.NewRecentSearchEntry(results[0])); err != nil {
		return err
	}
	return nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.Client != nil {
		if err := c.Client.Close(); err != nil {
			log.Warnf("Failed to close HTTP client: %v", err)
		}
	}
	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("Failed to close Redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
