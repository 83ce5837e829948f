package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/obridge/weave/app"
	"github.com/obridge/weave/monitor"
	"github.com/obridge/weave/store"
	"github.com/obridge/weave/x/cash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendermint/tendermint/libs/cli/flags"
	"github.com/tendermint/tendermint/libs/log"
)

func main() {
	confDir := flag.String("config", ".", "directory containing the optional obridged.env file")
	flag.Parse()

	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout))

	// Local development keeps OBRIDGE_ variables in a .env file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error("cannot load .env file", "err", err)
	}

	conf, err := loadConfiguration(*confDir)
	if err != nil {
		logger.Error("cannot load configuration", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, conf, logger); err != nil {
		logger.Error("daemon failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, conf *configuration, logger log.Logger) error {
	logger, err := flags.ParseLogLevel(conf.LogLevel, logger, "info")
	if err != nil {
		return fmt.Errorf("log level: %s", err)
	}

	gen, err := app.LoadGenesis(conf.Genesis)
	if err != nil {
		return fmt.Errorf("genesis: %s", err)
	}

	metrics := prometheus.NewRegistry()
	bank := cash.NewController(cash.NewBucket())
	journal := monitor.NewJournal(conf.Journal)
	handler, initializer := stack(bank, metrics, journal)

	ledger := app.NewLedger(store.MemStore(), handler, app.WithLogger(logger.With("module", "ledger")))
	if err := ledger.InitGenesis(gen, initializer); err != nil {
		return fmt.Errorf("init genesis: %s", err)
	}

	poller := monitor.NewPoller(journal, logSink(logger), []string{"htlc", "swap"},
		monitor.WithDelay(conf.PollDelay),
		monitor.WithLogger(logger))
	go func() {
		if height, err := poller.Run(ctx, 1); err != nil && ctx.Err() == nil {
			logger.Error("monitor stopped", "height", height, "err", err)
		}
	}()

	srv := &http.Server{
		Addr:              conf.HTTP,
		Handler:           routes(conf, ledger, bank, metrics, logger.With("module", "http")),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", conf.HTTP, "chain_id", gen.ChainID)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("http server: %s", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// logSink reports escrows carrying extra data to the log.
func logSink(logger log.Logger) monitor.Sink {
	return monitor.SinkFunc(func(ctx context.Context, e monitor.Event) error {
		logger.Info("escrow with extra data",
			"height", e.Height,
			"path", e.Path,
			"id", fmt.Sprintf("%X", e.Data),
			"dst_chain_id", e.Extra.DstChainID,
			"dst_address", e.Extra.DstAddress,
			"dst_token", e.Extra.DstToken,
			"dst_amount", e.Extra.DstAmount,
			"requestor", e.Extra.Requestor,
			"lp_id", e.Extra.LPID)
		return nil
	})
}
