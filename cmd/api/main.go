package main

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"linkapi.local/internal/app/links"
	linkcache "linkapi.local/internal/app/links/cache"
	"linkapi.local/internal/app/links/httpapi"
	"linkapi.local/internal/app/links/repo"
	platformcache "linkapi.local/internal/platform/cache"
	"linkapi.local/internal/platform/config"
	"linkapi.local/internal/platform/db"
	"linkapi.local/internal/platform/httpmiddleware"
	"linkapi.local/internal/platform/httpserver"
	"linkapi.local/internal/platform/metrics"
	"linkapi.local/internal/platform/migrate"
	"linkapi.local/internal/platform/trace"
)

var (
	version   = "dev"
	commit    = "none"
	buildTime = "unknown"
)

func main() {
	cfg := config.Load()

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var h slog.Handler
	if cfg.LogFormat == "text" {
		h = slog.NewTextHandler(os.Stdout, opts)
	} else {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))

	// DB
	dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	dbPool, errDB := db.New(dbCtx, cfg.DBDSN)
	if errDB != nil {
		log.Fatal(errDB)
	}
	defer dbPool.Close()
	if err := dbPool.Ping(dbCtx); err != nil {
		log.Fatal(err)
	}
	slog.Info("database connected")

	migCtx, migCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer migCancel()
	migRes, errMig := migrate.Up(migCtx, dbPool, migrate.Options{Dir: cfg.MigrationsDir})
	if errMig != nil {
		log.Fatal(errMig)
	}
	slog.Info("migrations applied", "dir", migRes.Dir, "applied", len(migRes.AppliedFiles), "skipped", len(migRes.SkippedFiles))

	// Resolve cache: in-process L1 + Redis L2 + bloom filter in front
	// of the table. All optional; a nil cache falls back to plain
	// queries.
	var slCache *linkcache.LinkCache
	var bloomFilter *linkcache.BloomFilter
	if cfg.CacheEnabled {
		redisClient, errRedis := platformcache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if errRedis != nil {
			log.Fatal(errRedis)
		}
		defer redisClient.Close()

		localCache, errLocal := linkcache.NewLocalCache(100_000, 1<<24) // 100k entries, 16MB
		if errLocal != nil {
			log.Fatal(errLocal)
		}
		slCache = linkcache.NewLinkCache(redisClient, localCache)
		defer slCache.Close()

		bloomFilter = linkcache.NewBloomFilter(1_000_000, 0.01)
	} else {
		slog.Warn("Cache disabled by config", "CACHE_ENABLED", false)
	}

	linksRepo := repo.NewLinksRepo(dbPool, slCache, bloomFilter)

	if bloomFilter != nil {
		warmCtx, warmCancel := context.WithTimeout(context.Background(), 10*time.Second)
		names, errWarm := linksRepo.ShortNames(warmCtx)
		warmCancel()
		if errWarm != nil {
			slog.Error("bloom warm-up failed", "err", errWarm)
		} else {
			for _, name := range names {
				bloomFilter.Add(name)
			}
			slog.Info("bloom filter warmed", "count", bloomFilter.Count())
		}
	}

	svc := links.NewService(linksRepo, cfg.BaseURL, cfg.RedirectPrefix)

	metrics.Init()

	var shutdown func(context.Context) error
	if cfg.TracingEnabled {
		shutdown = trace.InitTrace(cfg.OtlpGrpcEndpoint, cfg.OtlpServiceName)
		if shutdown == nil {
			slog.Error("Trace init failed")
		} else {
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					slog.Error(err.Error())
				}
			}()
		}
	} else {
		slog.Warn("Tracing disabled by config", "TRACING_ENABLED", false)
	}

	// Public surface.
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(httpapi.Recovery(), httpmiddleware.RequestID(), httpmiddleware.AccessLog(), httpmiddleware.Metrics(), httpmiddleware.TraceName())

	httpapi.Register(r, svc, cfg.RedirectPrefix)

	publicHandler := http.Handler(r)
	if cfg.TracingEnabled {
		publicHandler = otelhttp.NewHandler(r, "http")
	}
	publicSrv := httpserver.New(cfg, publicHandler)

	// Loopback / internal network only.
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		dbCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := dbPool.Ping(dbCtx); err != nil {
			w.WriteHeader(500)
			w.Write([]byte("DB Ping Err"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("DB ready"))
	})

	adminMux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"service_name": cfg.ServiceName,
			"version":      version,
			"commit":       commit,
			"build_time":   buildTime,
			"go_version":   runtime.Version(),
		})
	})

	if cfg.PprofEnabled {
		adminMux.HandleFunc("/debug/pprof/", pprof.Index)
		adminMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		adminMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		adminMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		adminMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	adminSrv := &http.Server{
		Addr:              cfg.AdminAddr,
		Handler:           adminMux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errch := make(chan error, 2)

	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(publicSrv, cfg.ShutdownTimeout, stopCtx)
	}()
	go func() {
		errch <- httpserver.RunWithGracefulShutdownContext(adminSrv, cfg.ShutdownTimeout, stopCtx)
	}()

	err := <-errch
	if err != nil {
		stop()
		select {
		case <-errch:
		case <-time.After(cfg.ShutdownTimeout + time.Second):
		}
		log.Fatal(err)
	}

	stop()
	<-errch
}
