package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/obridge/weave/app"
	"github.com/obridge/weave/x/cash"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tendermint/tendermint/libs/log"
)

// routes returns the HTTP API of the daemon.
func routes(conf *configuration, l *app.Ledger, bank cash.Controller, metrics *prometheus.Registry, logger log.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: conf.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("healthy"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(metrics, promhttp.HandlerOpts{}))
	r.Handle("/info", &InfoHandler{Ledger: l})

	escrows := NewEscrowsHandler(l, logger)
	r.Handle("/escrows", escrows)
	r.Handle("/escrows/{id}", escrows)
	swaps := NewSwapsHandler(l, logger)
	r.Handle("/swaps", swaps)
	r.Handle("/swaps/{id}", swaps)
	r.Handle("/gconf/{pkg}", &GconfHandler{Ledger: l, Logger: logger, Confs: gconfTypes})
	r.Handle("/feecaps/{ticker}", &FeeCapHandler{Ledger: l, Logger: logger})
	r.Handle("/balances/{address}", &BalanceHandler{Ledger: l, Logger: logger, Bank: bank})

	if conf.DevSubmit {
		r.Method(http.MethodPost, "/operations/{ext}/{name}", &SubmitHandler{Ledger: l, Logger: logger, Msgs: msgTypes})
	}
	return r
}
