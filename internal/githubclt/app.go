package githubclt

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/simplesurance/hooky/internal/kvstore"
	"github.com/simplesurance/hooky/internal/logfields"
)

const (
	// jwtLifetime is the validity duration of app JWTs, github accepts
	// at most 10min.
	jwtLifetime = 9 * time.Minute
	// jwtClockDrift is subtracted from the issue time to allow the github
	// server clock to be behind.
	jwtClockDrift = time.Minute
	// tokenCacheMargin is subtracted from the lifetime of an installation
	// token when it is cached.
	tokenCacheMargin = 100 * time.Second
)

// App authenticates as GitHub App and creates clients that act as the
// installation of the app in a repository.
// Installation access tokens are cached in the key-value store until shortly
// before they expire.
type App struct {
	id      int64
	key     *rsa.PrivateKey
	kv      kvstore.Store
	cltOpts []Opt
	logger  *zap.Logger
}

// NewApp returns an App for the GitHub App with the given ID.
// privateKeyPEM is the PEM encoded RSA private key of the app.
// opts are applied to all clients that are created.
func NewApp(appID int64, privateKeyPEM []byte, kv kvstore.Store, opts ...Opt) (*App, error) {
	key, err := jwt.ParseRSAPrivateKeyFromPEM(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing github app private key failed: %w", err)
	}

	return &App{
		id:      appID,
		key:     key,
		kv:      kv,
		cltOpts: opts,
		logger:  zap.L().Named(loggerName).Named("app"),
	}, nil
}

// JWT returns a token to authenticate as the app.
func (a *App) JWT() (string, error) {
	now := time.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.RegisteredClaims{
		Issuer:    strconv.FormatInt(a.id, 10),
		IssuedAt:  jwt.NewNumericDate(now.Add(-jwtClockDrift)),
		ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime)),
	})

	signed, err := token.SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("signing jwt failed: %w", err)
	}

	return signed, nil
}

// ForRepository returns a client that is authenticated as the installation
// of the app in the repository.
func (a *App) ForRepository(ctx context.Context, owner, repo string) (*Client, error) {
	token, err := a.installationToken(ctx, owner, repo)
	if err != nil {
		return nil, err
	}

	return New(token, a.cltOpts...)
}

func tokenCacheKey(owner, repo string) string {
	return "github_access_token_" + owner + "/" + repo
}

func (a *App) installationToken(ctx context.Context, owner, repo string) (string, error) {
	key := tokenCacheKey(owner, repo)
	logger := a.logger.With(
		logfields.RepositoryOwner(owner),
		logfields.Repository(repo),
	)

	cached, err := a.kv.Get(ctx, key)
	if err == nil {
		logger.Debug("using cached installation access token", logfields.Event("github_access_token_cache_hit"))
		return string(cached), nil
	}

	if !errors.Is(err, kvstore.ErrNotFound) {
		logger.Warn("reading installation access token from cache failed",
			logfields.Event("github_access_token_cache_read_failed"),
			zap.Error(err),
		)
	}

	appJWT, err := a.JWT()
	if err != nil {
		return "", err
	}

	appClt, err := New(appJWT, a.cltOpts...)
	if err != nil {
		return "", err
	}

	installation, _, err := appClt.restClt.Apps.FindRepositoryInstallation(ctx, owner, repo)
	if err != nil {
		return "", fmt.Errorf("retrieving app installation for %s/%s failed: %w", owner, repo, appClt.wrapRetryableErrors(err))
	}

	token, _, err := appClt.restClt.Apps.CreateInstallationToken(ctx, installation.GetID(), nil)
	if err != nil {
		return "", fmt.Errorf("creating installation access token for %s/%s failed: %w", owner, repo, appClt.wrapRetryableErrors(err))
	}

	if token.GetToken() == "" {
		return "", errors.New("github returned an empty installation access token")
	}

	ttl := time.Until(token.GetExpiresAt().Time) - tokenCacheMargin
	if ttl <= 0 {
		logger.Info("installation access token expires too soon to be cached",
			logfields.Event("github_access_token_not_cached"),
			zap.Time("expires_at", token.GetExpiresAt().Time),
		)

		return token.GetToken(), nil
	}

	if err := a.kv.SetEx(ctx, key, []byte(token.GetToken()), ttl); err != nil {
		logger.Warn("caching installation access token failed",
			logfields.Event("github_access_token_cache_write_failed"),
			zap.Error(err),
		)
	}

	logger.Debug("created new installation access token",
		logfields.Event("github_access_token_created"),
		zap.Int64("installation_id", installation.GetID()),
		zap.Duration("cache_ttl", ttl),
	)

	return token.GetToken(), nil
}
