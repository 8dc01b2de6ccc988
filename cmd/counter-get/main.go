package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/tckz/go-vuln-defense/internal/counter"
	"github.com/tckz/go-vuln-defense/internal/log"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optLogLevel    = flag.String("log-level", "info", "info|warn|error")
	optBackend     = flag.String("counter-backend", "file", "file|redis|postgres|datastore")
	optCounterPath = flag.String("counter-path", "contador.txt", "counter record for the file backend")
	optRedis       = flag.String("redis", "localhost:6379", "addr:port of redis")
	optCounterKey  = flag.String("counter-key", "contador", "counter name in redis, postgres or datastore")
	optPostgresDSN = flag.String("postgres-dsn", "", "postgres connection string")
	optNameSpace   = flag.String("ns", "", "datastore namespace")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, closer, err := counter.Open(ctx, counter.Backend{
		Kind:        *optBackend,
		Path:        *optCounterPath,
		Name:        *optCounterKey,
		RedisAddr:   *optRedis,
		PostgresDSN: *optPostgresDSN,
		ProjectID:   os.Getenv("PROJECT_ID"),
		Namespace:   *optNameSpace,
	})
	if err != nil {
		logger.Fatalf("*** counter.Open: %v", err)
	}
	defer closer.Close()

	v, err := c.Get(ctx)
	if err != nil {
		logger.Errorf("Get: %v", err)
		return
	}

	fmt.Fprintf(os.Stdout, "%d\n", v)
}
