package githubclt

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/simplesurance/hooky/internal/kvstore/kvtest"
)

func generateKey(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return key, pemKey
}

type fakeGithubApp struct {
	t              *testing.T
	key            *rsa.PrivateKey
	tokenExpiresIn time.Duration

	installationLookups atomic.Int32
	tokensCreated       atomic.Int32
}

func (f *fakeGithubApp) verifyJWT(r *http.Request) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	require.True(f.t, found)

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return &f.key.PublicKey, nil
	}, jwt.WithValidMethods([]string{"RS256"}))
	require.NoError(f.t, err)
	assert.Equal(f.t, "1234", claims.Issuer)
}

func (f *fakeGithubApp) mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /repos/o/r/installation", func(w http.ResponseWriter, r *http.Request) {
		f.installationLookups.Add(1)
		f.verifyJWT(r)
		writeJSON(f.t, w, map[string]any{"id": 42})
	})

	mux.HandleFunc("POST /app/installations/42/access_tokens", func(w http.ResponseWriter, r *http.Request) {
		f.tokensCreated.Add(1)
		f.verifyJWT(r)
		w.WriteHeader(http.StatusCreated)
		writeJSON(f.t, w, map[string]any{
			"token":      "ghs_installation",
			"expires_at": time.Now().Add(f.tokenExpiresIn).UTC().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("GET /repos/o/r/pulls/1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer ghs_installation", r.Header.Get("Authorization"))
		writeJSON(f.t, w, map[string]any{"number": 1, "state": "open"})
	})

	return mux
}

func newTestApp(t *testing.T, tokenExpiresIn time.Duration) (*App, *fakeGithubApp, *miniredis.Miniredis) {
	t.Helper()
	t.Cleanup(zap.ReplaceGlobals(zaptest.NewLogger(t).Named(t.Name())))

	key, pemKey := generateKey(t)
	fake := fakeGithubApp{t: t, key: key, tokenExpiresIn: tokenExpiresIn}

	srv := httptest.NewServer(fake.mux())
	t.Cleanup(srv.Close)

	kv, redisSrv := kvtest.NewRedis(t)

	app, err := NewApp(1234, pemKey, kv, WithBaseURL(srv.URL))
	require.NoError(t, err)

	return app, &fake, redisSrv
}

func TestForRepositoryUsesInstallationToken(t *testing.T) {
	app, fake, redisSrv := newTestApp(t, time.Hour)

	clt, err := app.ForRepository(context.Background(), "o", "r")
	require.NoError(t, err)

	pr, err := clt.PullRequest(context.Background(), "o", "r", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, pr.GetNumber())

	assert.EqualValues(t, 1, fake.installationLookups.Load())
	assert.EqualValues(t, 1, fake.tokensCreated.Load())

	ttl := redisSrv.TTL("github_access_token_o/r")
	assert.Greater(t, ttl, time.Hour-tokenCacheMargin-time.Minute)
	assert.LessOrEqual(t, ttl, time.Hour-tokenCacheMargin)
}

func TestInstallationTokenIsCached(t *testing.T) {
	app, fake, _ := newTestApp(t, time.Hour)

	for range 3 {
		clt, err := app.ForRepository(context.Background(), "o", "r")
		require.NoError(t, err)

		_, err = clt.PullRequest(context.Background(), "o", "r", 1)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, fake.tokensCreated.Load())
}

func TestShortLivedTokenIsNotCached(t *testing.T) {
	app, fake, redisSrv := newTestApp(t, time.Minute)

	for range 2 {
		_, err := app.ForRepository(context.Background(), "o", "r")
		require.NoError(t, err)
	}

	assert.EqualValues(t, 2, fake.tokensCreated.Load())
	assert.False(t, redisSrv.Exists("github_access_token_o/r"))
}

func TestNewAppRejectsInvalidKey(t *testing.T) {
	kv, _ := kvtest.NewRedis(t)

	_, err := NewApp(1, []byte("not a key"), kv)
	assert.Error(t, err)
}
