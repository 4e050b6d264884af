package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/shindosokuho/relay/internal/config"
	"github.com/shindosokuho/relay/internal/dmdata"
	"github.com/shindosokuho/relay/internal/domain"
	"github.com/shindosokuho/relay/internal/eewarbiter"
	"github.com/shindosokuho/relay/internal/fetch"
	"github.com/shindosokuho/relay/internal/httpapi"
	"github.com/shindosokuho/relay/internal/metrics"
	"github.com/shindosokuho/relay/internal/modstate"
	"github.com/shindosokuho/relay/internal/refdata"
	"github.com/shindosokuho/relay/internal/scheduler"
	"github.com/shindosokuho/relay/internal/telemetry"
	"github.com/shindosokuho/relay/internal/webhook"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file, overlaid on defaults")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := telemetry.NewEventLoggerWithWriter(os.Stdout, slog.LevelInfo)
	telemetry.SetGlobalEventLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
		Exporter:       telemetry.ExporterType(cfg.Telemetry.Exporter),
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:   cfg.Telemetry.OTLPInsecure,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "telemetry: %v\n", err)
		os.Exit(1)
	}
	defer tracerProvider.Shutdown(context.Background())

	tables, err := refdata.Load(cfg.RefDataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "refdata: %v\n", err)
		os.Exit(1)
	}

	reg := metrics.NewRegistry()

	eewStore := modstate.NewEEWStore()
	tsunamiStore := modstate.NewTsunamiStore()
	earthquakeLog := modstate.NewEarthquakeLog()

	sinks := []webhook.Sink{webhook.NoopSink{}}
	for _, url := range cfg.Webhook.URLs {
		sinks = append(sinks, webhook.NewHTTPSink(url))
	}

	fetchClient := fetch.New(fetch.Config{
		Timeout:    cfg.Fetch.RequestTimeout,
		MaxRetries: cfg.Fetch.MaxRetries,
	}, reg, logger)
	tsunamiPoller := fetch.NewTsunamiPoller()

	clock := clockwork.NewRealClock()

	var dmClient *dmdata.Client
	if cfg.DMData.Enabled {
		dmClient = dmdata.New(dmdata.Config{
			Token: dmdata.TokenConfig{
				TokenURL:     cfg.DMData.TokenURL,
				ClientID:     cfg.DMData.ClientID,
				RefreshToken: cfg.DMData.RefreshToken,
			},
			Session: dmdata.SessionConfig{
				StartURL: cfg.DMData.SessionStartURL,
				CloseURL: cfg.DMData.SessionCloseURL,
				AppName:  cfg.DMData.AppName,
			},
		}, reg, logger, clock, sinks)
		dmClient.OnEvent = func(ev domain.TelegramEvent) {
			switch e := ev.(type) {
			case domain.EEWForecastEvent:
				eewStore.SetSVIR(e.EEWEvent)
			case domain.EEWWarningEvent:
				eewStore.SetSVIR(e.EEWEvent)
			case domain.IntensityReportEvent:
				_ = earthquakeLog.Append(e.EarthquakeReport)
			case domain.DestinationEvent:
				_ = earthquakeLog.Append(e.EarthquakeReport)
			case domain.DetailScaleEvent:
				_ = earthquakeLog.Append(e.EarthquakeReport)
			case domain.ForeignEvent:
				_ = earthquakeLog.Append(e.EarthquakeReport)
			case domain.TsunamiExpectationEvent:
				tsunamiStore.SetExpectation(e.TsunamiExpectation)
			case domain.TsunamiObservationEvent:
				tsunamiStore.SetObservation(e.TsunamiObservation)
			}
		}
	}

	httpServer := httpapi.NewServer(eewStore, tsunamiStore, earthquakeLog, dmClient, reg)
	httpServer.TravelTime = tables.TravelTime

	sched := scheduler.New(clock, logger, reg, scheduler.DefaultWorkers)

	sched.Register(scheduler.Job{
		ID:       "p2p",
		Interval: 2 * time.Second,
		Fn: func(ctx context.Context) {
			quakes, err := fetch.FetchP2P(ctx, fetchClient, cfg.Fetch.P2PSummaryURL)
			if err != nil {
				return
			}
			httpServer.P2P.Set(quakes)
		},
	})

	sched.Register(scheduler.Job{
		ID:       "shake-level",
		Interval: 2 * time.Second,
		Fn: func(ctx context.Context) {
			sl, err := fetch.FetchShakeLevel(ctx, fetchClient, cfg.Fetch.ShakeLevelURL)
			if err != nil {
				return
			}
			httpServer.ShakeLevel.Set(sl)
		},
	})

	sched.Register(scheduler.Job{
		ID:       "eew",
		Interval: 2 * time.Second,
		Fn: func(ctx context.Context) {
			ev, err := fetch.FetchEEWImage(ctx, fetchClient, cfg.Fetch.EEWImageURL, cfg.Fetch.EEWJSONURL, tables)
			if err != nil {
				return
			}
			eewStore.SetKmoni(ev)

			svir, hasSVIR := eewStore.SVIR()
			kmoni, hasKmoni := eewStore.Kmoni()
			decision := eewarbiter.Arbitrate(eewarbiter.Input{
				SVIR: svir, HasSVIR: hasSVIR,
				Kmoni: kmoni, HasKmoni: hasKmoni,
			}, eewarbiter.Config{
				OnlyDMData:         cfg.Arbiter.OnlyDMData,
				IgnoreOutdatedSVIR: cfg.Arbiter.IgnoreOutdatedSVIR,
				KmoniClockOffset:   cfg.Arbiter.KmoniClockOffset,
			}, clock.Now())
			eewStore.SetCurrent(decision)
			logger.LogArbitration(decision.EventID, string(decision.Source))
		},
	})

	sched.Register(scheduler.Job{
		ID:       "tsunami",
		Interval: 4 * time.Second,
		Fn: func(ctx context.Context) {
			// The JMA Atom poller is the tsunami fallback for when the
			// dmdata stream, which carries VTSE41/VTSE51, is disabled.
			if cfg.DMData.Enabled {
				return
			}
			result, err := tsunamiPoller.Poll(ctx, fetchClient, cfg.Fetch.JMAAtomFeedURL)
			if err != nil {
				return
			}
			if result.HasExpectation {
				tsunamiStore.SetExpectation(result.Expectation)
			}
			if result.HasObservation {
				tsunamiStore.SetObservation(result.Observation)
			}
		},
	})

	sched.Register(scheduler.Job{
		ID:       "global-quake",
		Interval: 5 * time.Second,
		Fn: func(ctx context.Context) {
			entries, err := fetch.FetchGlobalQuake(ctx, fetchClient, cfg.Fetch.GlobalQuakeURL)
			if err != nil {
				return
			}
			httpServer.GlobalQuakes.Set(entries)
		},
	})

	if dmClient != nil {
		sched.Register(scheduler.Job{
			ID:       "dmdata-token-refresh",
			Interval: time.Hour,
			Fn: func(ctx context.Context) {
				if _, err := dmdata.NewTokenManager(dmdata.TokenConfig{
					TokenURL:     cfg.DMData.TokenURL,
					ClientID:     cfg.DMData.ClientID,
					RefreshToken: cfg.DMData.RefreshToken,
				}, nil).Refresh(ctx); err != nil {
					logger.LogTokenRefresh(false, err)
				}
			},
		})

		sched.Register(scheduler.Job{
			ID:             "dmdata-keepalive",
			Interval:       cfg.DMData.KeepAliveInterval,
			RunImmediately: true,
			Fn:             dmClient.KeepAliveProbe,
		})

		go func() {
			_ = dmClient.Connect(ctx)
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "http server: %v\n", err)
		}
	}()

	fmt.Printf("relay listening on %s\n", cfg.HTTP.Addr)

	<-ctx.Done()
	fmt.Println("shutting down...")

	sched.Stop()

	if dmClient != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_ = dmClient.Shutdown(shutdownCtx)
		cancel()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "http shutdown: %v\n", err)
	}
}
