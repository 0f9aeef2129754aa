package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"github.com/kvit-dev/caleoban/config"
	"github.com/kvit-dev/caleoban/database"
	"github.com/kvit-dev/caleoban/firebase"
	"github.com/kvit-dev/caleoban/handlers"
	"github.com/kvit-dev/caleoban/messaging"
	"github.com/kvit-dev/caleoban/planner"
	"github.com/kvit-dev/caleoban/taskstore"
	"github.com/kvit-dev/caleoban/utilities"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	utilities.InitLogger(utilities.LogOptions{Level: cfg.LogLevel, File: cfg.LogFile})
	if envErr != nil {
		utilities.LogInfo("No .env file loaded, using the process environment")
	}

	ctx := context.Background()

	var store handlers.TaskStore
	auth := &handlers.Auth{Disabled: cfg.AuthDisabled}

	switch cfg.TaskStore {
	case config.StoreMemory:
		utilities.LogWarn("Using the in-memory task store, tasks are lost on restart")
		store = taskstore.NewMemoryStore()
	case config.StoreFirestore:
		app, err := firebase.InitializeFirebase(ctx, cfg)
		if err != nil {
			log.Fatalf("Error initializing Firebase: %v", err)
		}
		fs, err := firebase.GetFirestoreClient(ctx, app)
		if err != nil {
			log.Fatalf("Error connecting to Firestore: %v", err)
		}
		defer fs.Close()
		store = firebase.NewTaskStore(fs, cfg.TasksCollection)

		if !cfg.AuthDisabled {
			authClient, err := firebase.GetAuthClient(ctx, app)
			if err != nil {
				log.Fatalf("Error connecting to Firebase Auth: %v", err)
			}
			auth.Verifier = firebase.NewTokenVerifier(authClient)
		}
	default:
		log.Fatalf("Unknown TASK_STORE %q", cfg.TaskStore)
	}

	if cfg.AuthDisabled {
		utilities.LogWarn("Authentication is disabled, X-User-ID identifies the caller")
	} else if auth.Verifier == nil {
		log.Fatal("Authentication needs Firebase; set TASK_STORE=firestore or AUTH_DISABLED=true")
	}

	gate := planner.NewGate(store, nil, messaging.NoopNotifier{})

	var history handlers.HistoryReader
	if cfg.DB.Enabled() {
		db, err := database.ConnectPostgres(cfg.DB)
		if err != nil {
			log.Fatalf("Error connecting to the database: %v", err)
		}
		defer db.Close()

		repo := database.NewHistoryRepo(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			log.Fatalf("Error preparing the history table: %v", err)
		}
		gate.Journal = repo
		history = repo
	}

	if cfg.NatsURL != "" {
		nc, err := messaging.Connect(cfg.NatsURL)
		if err != nil {
			log.Fatalf("Error connecting to NATS: %v", err)
		}
		defer nc.Drain()
		gate.Notifier = messaging.NewNATSNotifier(nc)
		utilities.LogInfo("Publishing status changes to NATS at %s", cfg.NatsURL)
	}

	h := handlers.NewTaskHandler(store, gate, history)
	h.MobileBreakpoint = cfg.MobileBreakpoint
	h.WarningDismiss = cfg.WarningDismiss
	h.AllowedOrigins = cfg.AllowedOrigins

	if err := LoadRoutes(cfg, h, auth); err != nil {
		utilities.LogError(err, "Server stopped")
	}
}
