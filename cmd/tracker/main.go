package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	// Autoloads .env file to supply environment variables
	_ "github.com/joho/godotenv/autoload"

	"github.com/wellnesshq/tracker/internal/accounts"
	activityhandler "github.com/wellnesshq/tracker/internal/handlers/activities"
	"github.com/wellnesshq/tracker/internal/handlers/profile"
	recordshandler "github.com/wellnesshq/tracker/internal/handlers/records"
	"github.com/wellnesshq/tracker/internal/logger"
	"github.com/wellnesshq/tracker/internal/medrecords"
	"github.com/wellnesshq/tracker/internal/session"
	"github.com/wellnesshq/tracker/internal/store"
)

func main() {
	log := logger.NewLogger()

	port := ":8080"
	if val, ok := os.LookupEnv("PORT"); ok {
		port = ":" + val
	}

	ctx := context.Background()

	st, err := store.NewRedisStore(ctx, getEnv("REDIS_URL", "redis://localhost:6379"))
	if err != nil {
		log.Fatalf("connecting to activity store: %s", err)
	}

	db, err := accounts.InitDB()
	if err != nil {
		log.Fatalf("connecting to accounts database: %s", err)
	}

	extractorURL, err := url.Parse(getEnv("EXTRACTOR_URL", "http://localhost:9090/"))
	if err != nil {
		log.Fatalf("parsing EXTRACTOR_URL: %s", err)
	}

	hub := session.NewHub(st, log)
	go func() {
		for range time.Tick(15 * time.Minute) {
			if n := hub.EvictIdle(8 * time.Hour); n > 0 {
				log.Infof("evicted %d idle sessions", n)
			}
		}
	}()

	profiles := profile.NewHandler(accounts.NewRegistry(db), hub)
	activities := activityhandler.NewHandler(hub)
	records := recordshandler.NewHandler(medrecords.NewExtractor(extractorURL, nil))

	http.HandleFunc("/", indexHandler)
	http.HandleFunc("POST /api/signup", profiles.Signup)
	http.HandleFunc("POST /api/signin", profiles.SignIn)
	http.HandleFunc("POST /api/signout", profiles.SignOut)
	http.HandleFunc("GET /api/profile", profiles.Profile)
	http.HandleFunc("GET /api/activities", activities.Draft)
	http.HandleFunc("POST /api/activities", activities.Update)
	http.HandleFunc("POST /api/activities/submit", activities.Submit)
	http.HandleFunc("GET /api/activities/log", activities.Log)
	http.HandleFunc("POST /api/records", records.Upload)

	log.Infof("starting server on port %s", port)
	log.Fatal(http.ListenAndServe(port, nil)) //#nosec: G114
}

func indexHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("Wellness Tracker")); err != nil {
		slog.Error("writing index response", "error", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}
