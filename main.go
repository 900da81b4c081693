package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"
	"gopkg.in/natefinch/lumberjack.v2"

	"cinescout/api"
	"cinescout/cache"
	"cinescout/config"
	"cinescout/handlers"
	"cinescout/models"
	"cinescout/services/catalog"
	"cinescout/services/sources"
)

func main() {
	configPath := flag.String("config", "cinescout.json", "path to the settings file")
	flag.Parse()

	settings, err := config.NewManager(*configPath).Load()
	if err != nil {
		log.Fatalf("[main] load settings: %v", err)
	}

	if settings.LogFile != "" {
		log.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   settings.LogFile,
			MaxSize:    20, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}))
	}

	client := sources.NewPoliteClient(
		settings.SourceRequestsPerSecond,
		settings.SourceRequestBurst,
		time.Duration(settings.SourceTimeoutSeconds)*time.Second,
	)
	store := cache.New[[]models.Screening](time.Duration(settings.CacheTTLHours) * time.Hour)
	catalogSvc := catalog.NewService(
		sources.DefaultRegistry,
		client,
		store,
		time.Duration(settings.SourceTimeoutSeconds)*time.Second,
		settings.EnabledSources,
	)

	h := handlers.NewScreeningsHandler(catalogSvc)
	limiter := api.NewRateLimiter(rate.Limit(2), 10)

	router := mux.NewRouter()
	router.Use(api.LoggingMiddleware())
	router.Use(api.CORSMiddleware())
	router.Use(limiter.Middleware())
	router.HandleFunc("/api/health", h.Health).Methods(http.MethodGet)
	router.HandleFunc("/api/screenings", h.GetScreenings).Methods(http.MethodGet)
	router.HandleFunc("/api/match", h.MatchWatchlist).Methods(http.MethodPost)
	router.HandleFunc("/api/refresh", h.Refresh).Methods(http.MethodPost)

	server := &http.Server{
		Addr:         settings.ListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // cold-cache aggregation can be slow
	}

	go func() {
		log.Printf("[main] listening on %s (%d sources registered)",
			settings.ListenAddr, len(sources.DefaultRegistry.List()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("[main] shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("[main] shutdown: %v", err)
	}
}
