package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"chargewatch/internal/apiclient"
	"chargewatch/internal/auth"
	providers "chargewatch/internal/providers/domain"
	stationrepo "chargewatch/internal/stations/infrastructure/postgres"
	stationhttp "chargewatch/internal/stations/interfaces/http"
	"chargewatch/internal/watcher/application"
	watchhttp "chargewatch/internal/watcher/interfaces/http"
	watchermetrics "chargewatch/internal/watcher/metrics"
	"chargewatch/internal/watcher/notify"
	"chargewatch/internal/watcher/snapshot"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := application.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	logger := log.New(os.Stdout, "", log.LstdFlags)

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL or PG_DSN is required")
	}
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	registry := providers.Default()
	repo := stationrepo.NewStationRepository(db)
	client := apiclient.NewClient(apiclient.WithTimeout(cfg.Timeout()))

	var notifiers []notify.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL))
	}
	if cfg.Mail.Host != "" {
		mailNotifier, err := notify.NewMailNotifier(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.From, cfg.Mail.To, cfg.Mail.Username, cfg.Mail.Password)
		if err != nil {
			logger.Fatalf("mail notifier error: %v", err)
		}
		notifiers = append(notifiers, mailNotifier)
	}
	var notifier notify.Notifier
	if len(notifiers) > 0 {
		notifier = notify.NewMultiNotifier(notifiers...)
	}

	archive, err := snapshot.NewArchive(cfg.SnapshotRoot)
	if err != nil {
		logger.Fatalf("snapshot archive error: %v", err)
	}

	metrics := watchermetrics.New()
	runner, err := application.NewRunner(registry, client, repo, notifier, archive, metrics, logger)
	if err != nil {
		logger.Fatalf("runner error: %v", err)
	}

	scheduler := application.NewScheduler(runner, cfg.Interval(), logger)
	go scheduler.Start(context.Background())

	stationHandler, err := stationhttp.NewHandler(repo, registry)
	if err != nil {
		logger.Fatalf("stations handler error: %v", err)
	}
	watchHandler, err := watchhttp.NewHandler(runner, registry)
	if err != nil {
		logger.Fatalf("watch handler error: %v", err)
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/stations", stationHandler)
	mux.Handle("/api/v1/stations/", stationHandler)
	mux.Handle("/api/v1/watch/run", watchHandler)
	mux.Handle("/api/v1/watch/run/", watchHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
