package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rubpy/crawly/clog"
	ycd "github.com/rubpy/ycd-go"
	"github.com/rubpy/ycd-go/binarystore"
	"github.com/rubpy/ycd-go/metrics"
)

//////////////////////////////////////////////////

type app struct {
	cfg    *Config
	logger *slog.Logger
	stop   context.CancelFunc

	store ycd.BinaryDataStore
}

var InvalidStore = errors.New("invalid store (expected fs, s3 or azblob)")

func (a *app) log(ctx context.Context, params clog.Params) {
	clog.WithParams(a.logger, ctx, params)
}

func (a *app) client(ctx context.Context, opts ...ycd.ConfigOption) (*ycd.Client, error) {
	store, err := a.binaryStore(ctx)
	if err != nil {
		return nil, err
	}

	base := []ycd.ConfigOption{
		ycd.WithLogger(a.logger),
		ycd.WithCredential(a.cfg.Credential),
		ycd.WithSettings(a.cfg.settings()),
	}
	if store != nil {
		base = append(base, ycd.WithBinaryDataStore(store))
	}

	c, err := ycd.NewClient(append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("ycd.NewClient: %w", err)
	}

	return c, nil
}

func (a *app) binaryStore(ctx context.Context) (store ycd.BinaryDataStore, err error) {
	if a.store != nil {
		return a.store, nil
	}

	switch a.cfg.Store {
	case "":
		return nil, nil

	case "fs":
		store, err = binarystore.NewFS(a.cfg.Out)

	case "s3":
		store, err = binarystore.NewS3(ctx, a.cfg.S3Config)

	case "azblob":
		store, err = binarystore.NewAzureBlob(a.cfg.AzureConnectionString, a.cfg.AzureContainer)

	default:
		return nil, fmt.Errorf("%w: %q", InvalidStore, a.cfg.Store)
	}
	if err != nil {
		return nil, fmt.Errorf("binarystore (%s): %w", a.cfg.Store, err)
	}

	a.store = store
	return
}

// serveMetrics exposes a Collector on /metrics until ctx is done. It returns
// nil when no address is configured.
func (a *app) serveMetrics(ctx context.Context) (col *metrics.Collector, err error) {
	addr := a.cfg.MetricsAddr
	if addr == "" {
		return nil, nil
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	col = metrics.New("ycd")
	if err = col.Register(reg); err != nil {
		return nil, fmt.Errorf("metrics.Collector.Register: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.Listen: %w", err)
	}

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		lp := clog.Params{
			Message: "metrics",
			Level:   slog.LevelInfo,

			Values: clog.ParamGroup{
				"addr": ln.Addr().String(),
			},
		}
		a.log(ctx, lp)

		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lp.Err = err
			a.log(ctx, lp)
		}
	}()

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		srv.Shutdown(shutdownCtx)
	}()

	return col, nil
}
