// Authors: Rohan Adla, Arrio Gonsalves, Shreyan Nalwad, Dylan Setiawan
// Date: Dec 12th 2025
// Project: A Bayesian VAR with Stochastic Volatility for Macro-Financial Forecasting
// Class: 02-613 at Caregie Mellon University

// Package metrics exports sampler progress to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Recorder implements bvar.Observer using Prometheus.
type Recorder struct {
	reg *prometheus.Registry

	sweeps        *prometheus.CounterVec
	draws         *prometheus.CounterVec
	sweepDuration *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
}

// New creates a recorder on its own registry so tests and repeated runs do
// not collide on the global one.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Recorder{
		reg: reg,
		sweeps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bvarsv_gibbs_sweeps_total",
				Help: "Total number of completed Gibbs sweeps",
			},
			[]string{"chain", "phase"},
		),
		draws: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bvarsv_posterior_draws_total",
				Help: "Total number of retained posterior draws",
			},
			[]string{"model"},
		),
		sweepDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bvarsv_sweep_duration_seconds",
				Help:    "Duration of one Gibbs sweep in seconds",
				Buckets: prometheus.ExponentialBuckets(1e-4, 4, 10),
			},
			[]string{"phase"},
		),
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bvarsv_runs_total",
				Help: "Total number of estimation runs by outcome",
			},
			[]string{"model", "status"},
		),
		runDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bvarsv_run_duration_seconds",
				Help:    "Wall time of an estimation run in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
	}
}

func phase(burnIn bool) string {
	if burnIn {
		return "burn_in"
	}
	return "sampling"
}

// ObserveSweep records one completed sweep.
func (r *Recorder) ObserveSweep(chain int, burnIn bool, elapsed time.Duration) {
	p := phase(burnIn)
	r.sweeps.WithLabelValues(strconv.Itoa(chain), p).Inc()
	r.sweepDuration.WithLabelValues(p).Observe(elapsed.Seconds())
}

// ObserveDraw records one retained draw.
func (r *Recorder) ObserveDraw(model string) {
	r.draws.WithLabelValues(model).Inc()
}

// RecordRun records the outcome and wall time of a run.
func (r *Recorder) RecordRun(model string, err error, elapsed time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.runs.WithLabelValues(model, status).Inc()
	r.runDuration.WithLabelValues(model).Observe(elapsed.Seconds())
}

// Handler serves the recorder's registry in the exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Serve exposes the handler on addr under path until ctx is done.
func Serve(ctx context.Context, addr, path string, h http.Handler, log *zap.Logger) error {
	mux := http.NewServeMux()
	mux.Handle(path, h)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("metrics endpoint listening", zap.String("addr", addr), zap.String("path", path))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		<-errCh
		return nil
	}
}
