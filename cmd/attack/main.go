package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/tckz/go-vuln-defense/internal/attack"
	"github.com/tckz/go-vuln-defense/internal/log"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optTarget       = flag.String("target", "http://localhost:5000", "base URL of the server")
	optSource       = flag.String("source", ".", "source tree scanned for literal secrets")
	optRaceRequests = flag.Int("race-requests", 20, "concurrent requests of the race attack")
	optOnly         = flag.String("only", "", "comma separated attacks to run: xss,traversal,secret,race")
	optTimeout      = flag.Duration("timeout", 10*time.Second, "per request timeout")
	optLogLevel     = flag.String("log-level", "info", "info|warn|error")
)

func init() {
	godotenv.Load()

	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	a := &attack.Attacker{
		BaseURL:      *optTarget,
		SourceDir:    *optSource,
		RaceRequests: *optRaceRequests,
		Client:       &http.Client{Timeout: *optTimeout},
		Logger:       logger.Desugar(),
	}

	var names []string
	if *optOnly != "" {
		names = strings.Split(*optOnly, ",")
	}

	outcomes, err := a.Run(ctx, names...)
	if err != nil {
		logger.Errorf("*** Run: %v", err)
	}

	undefended := 0
	for _, o := range outcomes {
		verdict := "DEFENDED"
		if !o.Defended {
			verdict = "VULNERABLE"
			undefended++
		}
		fmt.Printf("[%s] %s: %s\n", o.Name, verdict, o.Detail)
	}

	logger.Infof("done")
	if err != nil || undefended > 0 {
		os.Exit(1)
	}
}
