package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	zaplogfmt "github.com/sykesm/zap-logfmt"
	"github.com/thecodeteam/goodbye"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/simplesurance/hooky/internal/cfg"
	"github.com/simplesurance/hooky/internal/githubclt"
	"github.com/simplesurance/hooky/internal/hooky"
	"github.com/simplesurance/hooky/internal/index"
	"github.com/simplesurance/hooky/internal/kvstore"
	"github.com/simplesurance/hooky/internal/logfields"
	"github.com/simplesurance/hooky/internal/magiccomment"
	"github.com/simplesurance/hooky/internal/provider/github"
	"github.com/simplesurance/hooky/internal/repocfg"
	"github.com/simplesurance/hooky/internal/routines"
	"github.com/simplesurance/hooky/internal/selection"
)

const appName = "hooky"

var logger *zap.Logger

// Version is set via a ldflag on compilation
var Version = "unknown"

const (
	shutdownTimeout   = 30 * time.Second
	kvConnectTimeout  = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

func exitOnErr(msg string, err error) {
	if err == nil {
		return
	}

	fmt.Fprintln(os.Stderr, "ERROR:", msg+", error:", err.Error())
	os.Exit(1)
}

func panicHandler() {
	if r := recover(); r != nil {
		logger.Info(
			"panic caught , terminating gracefully",
			zap.String("panic", fmt.Sprintf("%v", r)),
			zap.StackSkip("stacktrace", 1),
		)

		ctx, cancelFn := context.WithTimeout(context.Background(), time.Minute)
		defer cancelFn()

		goodbye.Exit(ctx, 1)
	}
}

func startHTTPSServer(listenAddr string, certFile, keyFile string, mux *http.ServeMux) *http.Server {
	httpsServer := http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		defer panicHandler()

		logger.Info(
			"https server started",
			logfields.Event("https_server_started"),
			zap.String("listenAddr", listenAddr),
		)

		err := httpsServer.ListenAndServeTLS(certFile, keyFile)
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("https server terminated", logfields.Event("https_server_terminated"))
			return
		}

		logger.Fatal(
			"https server terminated unexpectedly",
			logfields.Event("https_server_terminated_unexpectedly"),
			zap.Error(err),
		)
	}()

	return &httpsServer
}

func startHTTPServer(listenAddr string, mux *http.ServeMux) *http.Server {
	httpServer := http.Server{
		Addr:              listenAddr,
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		defer panicHandler()

		logger.Info(
			"http server started",
			logfields.Event("http_server_started"),
			zap.String("listenAddr", listenAddr),
		)

		err := httpServer.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			logger.Info("http server terminated", logfields.Event("http_server_terminated"))
			return
		}

		logger.Fatal(
			"http server terminated unexpectedly",
			logfields.Event("http_server_terminated_unexpectedly"),
			zap.Error(err),
		)
	}()

	return &httpServer
}

// shutdownServers stops accepting new requests and waits until the
// in-flight requests were answered.
func shutdownServers(servers []*http.Server) {
	ctx, cancelFn := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelFn()

	logger.Debug(
		"terminating http servers",
		logfields.Event("http_servers_terminating"),
		zap.Duration("shutdown_timeout", shutdownTimeout),
	)

	var wg sync.WaitGroup
	for _, srv := range servers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn(
					"shutting down http server failed",
					logfields.Event("http_server_termination_failed"),
					zap.String("listenAddr", srv.Addr),
					zap.Error(err),
				)
			}
		}()
	}

	wg.Wait()
}

type arguments struct {
	Verbose     *bool
	ConfigFile  *string
	ShowVersion *bool
	DryRun      *bool
}

var args arguments

const defConfigFile = "/etc/hooky/config.toml"

func mustParseCommandlineParams() {
	args = arguments{
		Verbose: pflag.BoolP(
			"verbose",
			"v",
			false,
			"enable verbose logging",
		),
		ConfigFile: pflag.StringP(
			"cfg-file",
			"c",
			defConfigFile,
			"path to the hooky configuration file",
		),
		ShowVersion: pflag.Bool(
			"version",
			false,
			"print the version and exit",
		),
		DryRun: pflag.Bool(
			"dry-run",
			false,
			"process events but only log the GitHub changes instead of applying them",
		),
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTION]\nAssign reviewers, label pull requests and check change files via GitHub webhooks.\n", appName)
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		pflag.PrintDefaults()
	}

	pflag.Parse()
}

func mustParseCfg() *cfg.Config {
	// we use exitOnErr in this function instead of logger.Fatal() because
	// the logger is not initialized yet

	file, err := os.Open(*args.ConfigFile)
	exitOnErr("could not open configuration files", err)
	defer file.Close()

	config, err := cfg.Load(file)
	if err != nil {
		exitOnErr(fmt.Sprintf("could not load configuration file: %s", *args.ConfigFile), err)
	}

	exitOnErr(fmt.Sprintf("invalid configuration file: %s", *args.ConfigFile), config.Validate())

	return config
}

func initLogFmtLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zapEncoderConfig(config)

	logger := zap.New(zapcore.NewCore(
		zaplogfmt.NewEncoder(cfg),
		os.Stdout,
		logLevel),
	)

	return logger
}

func zapEncoderConfig(config *cfg.Config) zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()

	cfg.LevelKey = "loglevel"
	cfg.TimeKey = config.LogTimeKey
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeDuration = zapcore.StringDurationEncoder

	return cfg
}

func mustInitZapFormatLogger(config *cfg.Config, logLevel zapcore.Level) *zap.Logger {
	cfg := zap.NewProductionConfig()
	cfg.Sampling = nil
	cfg.EncoderConfig = zapEncoderConfig(config)
	cfg.OutputPaths = []string{"stdout"}
	cfg.Encoding = config.LogFormat
	cfg.Level = zap.NewAtomicLevelAt(logLevel)

	logger, err := cfg.Build()
	exitOnErr("could not initialize logger", err)

	return logger
}

func mustInitLogger(config *cfg.Config) {
	var logLevel zapcore.Level
	if *args.Verbose {
		logLevel = zapcore.DebugLevel
	} else {
		if err := (&logLevel).Set(config.LogLevel); err != nil {
			fmt.Fprintf(os.Stderr, "can not set log level to %q: %s \n", config.LogLevel, err)
			os.Exit(2)
		}
	}

	switch config.LogFormat {
	case "logfmt":
		logger = initLogFmtLogger(config, logLevel)
	case "console", "json":
		logger = mustInitZapFormatLogger(config, logLevel)
	default:
		fmt.Fprintf(os.Stderr, "unsupported log-format argument: %q\n", config.LogFormat)
		os.Exit(2)
	}

	logger = logger.Named("main")
	zap.ReplaceGlobals(logger)

	goodbye.Register(func(context.Context, os.Signal) {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "flushing logs failed: %s\n", err)
		}
	})
}

func mustConnectKVStore(config *cfg.Config) kvstore.Store {
	ctx, cancelFn := context.WithTimeout(context.Background(), kvConnectTimeout)
	defer cancelFn()

	switch config.KVBackend {
	case cfg.KVBackendRedis:
		store, err := kvstore.NewRedis(config.RedisURL)
		if err != nil {
			logger.Fatal("creating redis client failed", logfields.Event("kvstore_init_failed"), zap.Error(err))
		}

		if err := store.Ping(ctx); err != nil {
			logger.Fatal("connecting to redis failed", logfields.Event("kvstore_init_failed"), zap.Error(err))
		}

		return store

	case cfg.KVBackendNATS:
		store, err := kvstore.NewNATS(ctx, config.NATSURL, config.NATSKVBucket)
		if err != nil {
			logger.Fatal("connecting to nats failed", logfields.Event("kvstore_init_failed"), zap.Error(err))
		}

		return store

	default:
		logger.Fatal(
			"unsupported kv backend",
			logfields.Event("kvstore_init_failed"),
			zap.String("kv_backend", config.KVBackend),
		)
		return nil
	}
}

// methodPattern returns a http.ServeMux pattern that matches method requests
// for exactly path.
func methodPattern(method, path string) string {
	if strings.HasSuffix(path, "/") {
		path += "{$}"
	}

	return method + " " + path
}

func hide(in string) string {
	if in == "" {
		return in
	}

	return "**hidden**"
}

func main() {
	defer panicHandler()

	defer goodbye.Exit(context.Background(), 1)
	goodbye.Notify(context.Background())

	mustParseCommandlineParams()

	if *args.ShowVersion {
		fmt.Printf("%s %s\n", appName, Version)
		os.Exit(0) // nolint:gocritic // defer functions won't run
	}

	config := mustParseCfg()

	mustInitLogger(config)

	logger.Info(
		"loaded cfg file",
		logfields.Event("cfg_loaded"),
		zap.String("cfg_file", *args.ConfigFile),
		zap.String("http_server_listen_addr", config.HTTPListenAddr),
		zap.String("https_server_listen_addr", config.HTTPSListenAddr),
		zap.String("github_webhook_endpoint", config.HTTPGithubWebhookEndpoint),
		zap.String("github_webhook_secret", hide(config.GithubWebHookSecret)),
		zap.Int64("github_app_id", config.GithubAppID),
		zap.String("github_app_private_key_file", config.GithubAppPrivateKeyFile),
		zap.String("github_api_url", config.GithubAPIURL),
		zap.String("kv_backend", config.KVBackend),
		zap.Duration("config_cache_timeout", config.ConfigCacheTTL()),
		zap.Int64("overflow_multiple", config.OverflowMultiple),
		zap.Int("max_concurrent_events", config.MaxConcurrentEvents),
		zap.String("event_filter", config.EventFilter),
		zap.String("status_target_url", config.StatusTargetURL),
		zap.String("metrics_endpoint", config.HTTPMetricsEndpoint),
		zap.String("log_format", config.LogFormat),
		zap.String("log_time_key", config.LogTimeKey),
		zap.String("log_level", config.LogLevel),
		zap.Bool("dry_run", *args.DryRun),
	)

	goodbye.Register(func(_ context.Context, sig os.Signal) {
		logger.Info(fmt.Sprintf("terminating, received signal %s", sig.String()))
	})

	privateKey, err := config.GithubAppPrivateKey()
	if err != nil {
		logger.Fatal("reading github app private key failed", logfields.Event("cfg_invalid"), zap.Error(err))
	}

	kv := mustConnectKVStore(config)

	app, err := githubclt.NewApp(
		config.GithubAppID,
		privateKey,
		kv,
		githubclt.WithBaseURL(config.GithubAPIURL),
		githubclt.WithTransport(githubclt.NewTransport()),
	)
	if err != nil {
		logger.Fatal("initializing github app failed", logfields.Event("github_app_init_failed"), zap.Error(err))
	}

	processorOpts := []hooky.ProcessorOpt{hooky.WithStatusTargetURL(config.StatusTargetURL)}
	var counter selection.Counter = &selection.KVCounter{Store: kv}
	if *args.DryRun {
		processorOpts = append(processorOpts, hooky.WithDryRun())
		counter = &selection.DryRunCounter{Store: kv}
	}

	processor := hooky.NewProcessor(
		&hooky.AppClients{App: app},
		repocfg.NewResolver(kv, repocfg.WithCacheTTL(config.ConfigCacheTTL())),
		selection.NewSelector(
			counter,
			magiccomment.Codec{},
			selection.WithOverflowMultiple(config.OverflowMultiple),
		),
		processorOpts...,
	)

	providerOpts := []github.Opt{github.WithPayloadSecret(config.GithubWebHookSecret)}
	if config.EventFilter != "" {
		filter, err := github.NewEventFilter(config.EventFilter)
		if err != nil {
			logger.Fatal("parsing event_filter failed", logfields.Event("cfg_invalid"), zap.Error(err))
		}
		providerOpts = append(providerOpts, github.WithEventFilter(filter))
	}

	pool := routines.NewPool(config.MaxConcurrentEvents)
	gh := github.New(processor, pool, providerOpts...)

	indexPage, err := index.New(appName, Version)
	if err != nil {
		logger.Fatal("rendering index page failed", logfields.Event("index_init_failed"), zap.Error(err))
	}

	mux := http.NewServeMux()

	mux.HandleFunc(methodPattern(http.MethodPost, config.HTTPGithubWebhookEndpoint), gh.HTTPHandler)
	logger.Info(
		"registered github webhook event http endpoint",
		logfields.Event("github_http_handler_registered"),
		zap.String("endpoint", config.HTTPGithubWebhookEndpoint),
	)

	mux.HandleFunc(methodPattern(http.MethodGet, "/"), indexPage.HTTPHandler)

	if config.HTTPMetricsEndpoint != "" {
		mux.Handle(methodPattern(http.MethodGet, config.HTTPMetricsEndpoint), promhttp.Handler())
		logger.Info(
			"registered prometheus metrics http endpoint",
			logfields.Event("metrics_http_handler_registered"),
			zap.String("endpoint", config.HTTPMetricsEndpoint),
		)
	}

	var servers []*http.Server

	if config.HTTPListenAddr != "" {
		servers = append(servers, startHTTPServer(config.HTTPListenAddr, mux))
	}

	if config.HTTPSListenAddr != "" {
		servers = append(servers, startHTTPSServer(
			config.HTTPSListenAddr,
			config.HTTPSCertFile,
			config.HTTPSKeyFile,
			mux,
		))
	}

	goodbye.Register(func(context.Context, os.Signal) {
		shutdownServers(servers)

		logger.Debug("waiting for event processing to finish", logfields.Event("event_processing_stopping"))
		pool.Wait()

		if err := kv.Close(); err != nil {
			logger.Warn("closing kv store connection failed", logfields.Event("kvstore_close_failed"), zap.Error(err))
		}
	})

	select {}
}
