package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/tckz/go-vuln-defense/internal/loadgen"
	"github.com/tckz/go-vuln-defense/internal/log"
	vh "github.com/tckz/vegetahelper"
	vegeta "github.com/tsenart/vegeta/v12/lib"
	"go.uber.org/zap"
)

var (
	myName  = filepath.Base(os.Args[0])
	logger  *zap.SugaredLogger
	version string
)

var (
	optRate = &vh.RateFlag{
		Rate: &vegeta.Rate{
			Freq: 30,
			Per:  1 * time.Second,
		}}
	optTarget   = flag.String("target", "http://localhost:5000/escrever", "counter endpoint")
	optDuration = flag.Duration("duration", 10*time.Second, "Duration of the test [0 = forever]")
	optOutput   = flag.String("output", "", "/path/to/results.bin or 'stdout'")
	optWorkers  = flag.Uint64("workers", vegeta.DefaultWorkers, "Number of workers")
	optBurst    = flag.Int("burst", 0, "fire this many simultaneous requests once instead of a sustained attack")
	optLogLevel = flag.String("log-level", "info", "info|warn|error")
)

func init() {
	godotenv.Load()

	flag.Var(optRate, "rate", "Number of requests per time unit")
	flag.Parse()

	logger = log.Must(log.NewLogger(log.WithLogLevel(*optLogLevel))).Sugar().With(zap.String("app", myName))
}

type nopWriteCloser struct {
	io.Writer
}

func (c nopWriteCloser) Close() error {
	return nil
}

func openResultFile(out string) (io.WriteCloser, error) {
	switch out {
	case "stdout":
		return &nopWriteCloser{os.Stdout}, nil
	default:
		return os.Create(out)
	}
}

func main() {
	logger.Infof("ver=%s, args=%s", version, os.Args)
	defer logger.Infof("done")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT)
	defer cancel()

	if *optBurst > 0 {
		runBurst(ctx)
		return
	}
	runSoak(ctx)
}

func runBurst(ctx context.Context) {
	b := &loadgen.Burst{
		Target:      *optTarget,
		Concurrency: *optBurst,
		Logger:      logger.Desugar(),
	}
	r, err := b.Run(ctx)
	if err != nil {
		logger.Fatalf("*** Run: %v", err)
	}
	logger.Infof("burst: %s", r)
	if !r.Serialized() {
		logger.Warnf("RACE: returned values are not one contiguous range")
	}
}

func runSoak(ctx context.Context) {
	if *optOutput == "" {
		logger.Fatalf("*** --output must be specified.")
	}

	out, err := openResultFile(*optOutput)
	if err != nil {
		logger.Fatal(err)
	}
	defer out.Close()
	enc := vegeta.NewEncoder(out)

	s := &loadgen.Soak{
		Target:   *optTarget,
		Rate:     *optRate.Rate,
		Duration: *optDuration,
		Workers:  *optWorkers,
	}
	m, err := s.Run(ctx, enc.Encode)
	if err != nil {
		logger.Errorf("*** Run: %v", err)
	}
	if m == nil {
		return
	}

	logger.Infof("requests=%s success=%.2f%% p99=%s bytesIn=%s codes=%v",
		humanize.Comma(int64(m.Requests)),
		m.Success*100,
		m.Latencies.P99,
		humanize.Bytes(m.BytesIn.Total),
		m.StatusCodes)
}
