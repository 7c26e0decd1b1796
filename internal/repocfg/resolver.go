package repocfg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/kvstore"
	"github.com/simplesurance/hooky/internal/logfields"
)

const loggerName = "repocfg"

// DefCacheTTL is the default duration for that a loaded configuration is
// cached.
const DefCacheTTL = 10 * time.Minute

// FileFetcher retrieves files from a GitHub repository.
type FileFetcher interface {
	// FileContent returns the content of the file at path in the
	// repository at ref. An empty ref refers to the default branch.
	// If the file does not exist, an error wrapping fs.ErrNotExist is
	// returned.
	FileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
}

// Target identifies the revision of a repository for that the
// configuration is loaded.
type Target struct {
	Owner string
	Repo  string
	// Ref is a branch name, tag or commit SHA, it can be empty if no
	// pull request is involved.
	Ref string
}

func (t *Target) FullName() string {
	return t.Owner + "/" + t.Repo
}

func (t *Target) String() string {
	if t.Ref == "" {
		return t.FullName()
	}
	return t.FullName() + "#" + t.Ref
}

// RefCacheKey returns the cache key of the configuration at the ref.
func (t *Target) RefCacheKey() string {
	return "config_" + t.FullName() + "_" + t.Ref
}

// DefaultBranchCacheKey returns the cache key of the configuration of the
// default branch.
func (t *Target) DefaultBranchCacheKey() string {
	return "config_" + t.FullName()
}

// Resolver loads repository configurations and caches them in a key-value
// store.
//
// The configuration is resolved in the following order, the first tier
// that yields a configuration wins:
//  1. cache entry of the ref,
//  2. configuration file at the ref, it is cached for the ref,
//  3. cache entry of the default branch,
//  4. configuration file in the default branch, it is cached for the
//     default branch,
//  5. the default configuration, it is cached for the default branch.
//
// Tiers 1 and 2 are skipped when no ref is given.
type Resolver struct {
	kv     kvstore.Store
	ttl    time.Duration
	logger *zap.Logger
}

type ResolverOpt func(*Resolver)

// WithCacheTTL sets the duration for that loaded configurations are cached.
func WithCacheTTL(ttl time.Duration) ResolverOpt {
	return func(r *Resolver) {
		r.ttl = ttl
	}
}

func NewResolver(kv kvstore.Store, opts ...ResolverOpt) *Resolver {
	r := Resolver{
		kv:     kv,
		ttl:    DefCacheTTL,
		logger: zap.L().Named(loggerName),
	}

	for _, opt := range opts {
		opt(&r)
	}

	return &r
}

// Load returns the configuration for target.
// Failures to read a configuration file or to access the cache are logged
// and cause a fallback to the next tier, Load therefore always returns a
// configuration. It only returns an error when ctx is cancelled.
func (r *Resolver) Load(ctx context.Context, fetcher FileFetcher, target *Target) (*RepoConfig, error) {
	logger := r.logger.With(logfields.Repository(target.FullName()))

	if target.Ref != "" {
		logger := logger.With(logfields.Ref(target.Ref))

		if cfg := r.cached(ctx, logger, target.RefCacheKey()); cfg != nil {
			metrics.LookupInc(tierRefCache)
			return cfg, nil
		}

		if cfg := r.fromRepository(ctx, logger, fetcher, target.Owner, target.Repo, target.Ref); cfg != nil {
			metrics.LookupInc(tierRefFile)
			r.store(ctx, logger, target.RefCacheKey(), cfg)
			return cfg, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg := r.cached(ctx, logger, target.DefaultBranchCacheKey()); cfg != nil {
		metrics.LookupInc(tierDefaultBranchCache)
		return cfg, nil
	}

	cfg := r.fromRepository(ctx, logger, fetcher, target.Owner, target.Repo, "")
	if cfg != nil {
		metrics.LookupInc(tierDefaultBranchFile)
	} else {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		metrics.LookupInc(tierDefault)
		logger.Info("using default configuration", logfields.Event("repository_config_default_used"))
		cfg = Default()
	}

	r.store(ctx, logger, target.DefaultBranchCacheKey(), cfg)

	return cfg, nil
}

func (r *Resolver) cached(ctx context.Context, logger *zap.Logger, key string) *RepoConfig {
	logger = logger.With(logfields.CacheKey(key))

	data, err := r.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			logger.Warn("reading configuration from cache failed",
				logfields.Event("repository_config_cache_read_failed"),
				zap.Error(err),
			)
		}
		return nil
	}

	var cfg RepoConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		logger.Warn("cached configuration is invalid, ignoring it",
			logfields.Event("repository_config_cache_invalid"),
			zap.Error(err),
		)
		return nil
	}

	logger.Debug("using cached configuration", logfields.Event("repository_config_cache_hit"))

	return &cfg
}

func (r *Resolver) store(ctx context.Context, logger *zap.Logger, key string, cfg *RepoConfig) {
	data, err := json.Marshal(cfg)
	if err != nil {
		logger.Error("marshaling configuration failed", zap.Error(err))
		return
	}

	if err := r.kv.SetEx(ctx, key, data, r.ttl); err != nil {
		logger.Warn("caching configuration failed",
			logfields.Event("repository_config_cache_write_failed"),
			logfields.CacheKey(key),
			zap.Error(err),
		)
	}
}

// fromRepository reads the first existing configuration file at ref.
// When the first existing file contains no valid configuration, nil is
// returned and the remaining files are not evaluated.
func (r *Resolver) fromRepository(
	ctx context.Context,
	logger *zap.Logger,
	fetcher FileFetcher,
	owner, repo, ref string,
) *RepoConfig {
	prefix := owner + "/" + repo + "#" + ref
	if ref == "" {
		prefix = owner + "/" + repo + "#[default]"
	}

	for _, name := range FileNames {
		logger := logger.With(zap.String("config_file", prefix+"/"+name))

		data, err := fetcher.FileContent(ctx, owner, repo, name, ref)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn("retrieving configuration file failed",
					logfields.Event("repository_config_file_retrieval_failed"),
					zap.Error(err),
				)
			}
			if ctx.Err() != nil {
				return nil
			}
			continue
		}

		cfg, err := Parse(data)
		if err != nil {
			logger.Info(
				describeParseError(err),
				logfields.Event("repository_config_file_invalid"),
				zap.Error(err),
			)
			return nil
		}

		logger.Debug("configuration loaded",
			logfields.Event("repository_config_loaded"),
			zap.Stringer("config", cfg),
		)

		return cfg
	}

	logger.Info(
		fmt.Sprintf("%s, no %q or %q found", prefix, FileNames[0], FileNames[1]),
		logfields.Event("repository_config_file_not_found"),
	)

	return nil
}

func describeParseError(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFile):
		return "invalid config file"
	case errors.Is(err, ErrNoTable):
		return "no [tool.hooky] section found"
	default:
		return "error validating hooky config"
	}
}
