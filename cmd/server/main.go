package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tckz/go-vuln-defense/internal/config"
	"github.com/tckz/go-vuln-defense/internal/counter"
	"github.com/tckz/go-vuln-defense/internal/log"
	"github.com/tckz/go-vuln-defense/internal/server"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optAddr           = flag.String("addr", ":5000", "listen address")
	optLogLevel       = flag.String("log-level", "info", "debug|info|warn|error")
	optBaseDir        = flag.String("base-dir", "arquivos", "directory served by /abrir")
	optBackend        = flag.String("counter-backend", "file", "file|unguarded|memory|redis|postgres|datastore")
	optCounterPath    = flag.String("counter-path", "contador.txt", "counter record for file backends")
	optUnguardedDelay = flag.Duration("unguarded-delay", 0, "pause between read and write in the unguarded backend")
	optRedis          = flag.String("redis", "localhost:6379", "addr:port of redis")
	optCounterKey     = flag.String("counter-key", "contador", "counter name in redis, postgres or datastore")
	optPostgresDSN    = flag.String("postgres-dsn", "", "postgres connection string")
	optNameSpace      = flag.String("ns", "", "datastore namespace")
	optDedupTTL       = flag.Duration("dedup-ttl", time.Minute, "how long an Idempotency-Key is remembered, 0 to disable")
)

func init() {
	config.LoadDotEnv()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		logger.Fatalf("*** run: %v", err)
	}
}

func run(ctx context.Context) error {
	secrets := config.LoadSecrets()
	if secrets.Configured() {
		logger.Infof("%s configured", config.EnvAPIKey)
	} else {
		logger.Warnf("%s not set, using %s", config.EnvAPIKey, config.MissingKeyPlaceholder)
	}

	if fi, err := os.Stat(*optBaseDir); err != nil || !fi.IsDir() {
		logger.Warnf("base-dir %s is not a directory, /abrir will answer 404", *optBaseDir)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := server.NewMetrics(reg)

	if *optBackend == "unguarded" {
		logger.Warnf("counter backend is UNGUARDED, concurrent increments will be lost")
	}
	c, closer, err := counter.Open(ctx, counter.Backend{
		Kind:           *optBackend,
		Path:           *optCounterPath,
		UnguardedDelay: *optUnguardedDelay,
		FileOptions:    []counter.FileOption{counter.WithLockWaitObserver(metrics.ObserveLockWait)},
		Name:           *optCounterKey,
		RedisAddr:      *optRedis,
		PostgresDSN:    *optPostgresDSN,
		ProjectID:      os.Getenv("PROJECT_ID"),
		Namespace:      *optNameSpace,
	})
	if err != nil {
		return fmt.Errorf("counter.Open: %w", err)
	}
	defer closer.Close()
	logger.Infof("counter backend=%s", *optBackend)

	srv, err := server.New(server.Config{
		Counter:  c,
		DedupTTL: *optDedupTTL,
		BaseDir:  *optBaseDir,
		Metrics:  metrics,
		Logger:   logger.Desugar(),
	})
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}
	return srv.Run(ctx, *optAddr)
}
