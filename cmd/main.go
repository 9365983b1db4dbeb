package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"actionbot/alerts"
	discordclient "actionbot/clients/discord"
	"actionbot/config"
	"actionbot/db"
	"actionbot/handlers"
	"actionbot/middleware"
	"actionbot/services/actions"
	"actionbot/services/triggers"
	"actionbot/services/txmanager"
	"actionbot/usecases/dispatch"
)

func main() {
	if err := run(); err != nil {
		log.Printf("❌ Fatal error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	// Initialize database connection
	dbConn, err := db.NewConnection(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	// Initialize repositories with shared connection
	triggersRepo := db.NewPostgresTriggersRepository(dbConn, cfg.DatabaseSchema)
	actionsRepo := db.NewPostgresActionsRepository(dbConn, cfg.DatabaseSchema)

	// Initialize transaction manager
	txManager := txmanager.NewTransactionManager(dbConn)

	triggersService := triggers.NewTriggersService(triggersRepo, actionsRepo, txManager)
	actionsService := actions.NewActionsService(actionsRepo, triggersRepo)

	alertNotifier := alerts.NewNotifier(cfg.SlackAlertWebhookURL, cfg.Environment, "actionbot")

	// The gateway handler owns the Discord session; the effect sink and
	// slash-command surface share it
	eventsHandler, err := handlers.NewDiscordEventsHandler(cfg.DiscordConfig.BotToken, nil, alertNotifier)
	if err != nil {
		return err
	}
	discordClient := discordclient.NewDiscordClient(eventsHandler.Session())
	dispatchUseCase := dispatch.NewDispatchUseCase(triggersService, discordClient)
	eventsHandler.SetDispatchUseCase(dispatchUseCase)

	commandsHandler := handlers.NewCommandsHandler(eventsHandler.Session(), triggersService, actionsService)

	if err := eventsHandler.StartBot(); err != nil {
		return err
	}
	defer eventsHandler.StopBot()

	if err := commandsHandler.RegisterCommands(); err != nil {
		return err
	}

	// Create a new router
	router := mux.NewRouter()

	apiHandler := handlers.NewAPIHandler(triggersService, actionsService)
	authMiddleware := middleware.NewAPIKeyAuthMiddleware(cfg.AdminAPIKey)
	apiHandler.SetupEndpoints(router, authMiddleware)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			log.Printf("❌ Failed to write health check response: %v", err)
		}
	}).Methods("GET")

	// Setup CORS middleware
	allowedOrigins := strings.Split(cfg.CORSAllowedOrigins, ",")
	for i, origin := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(origin)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Setup and handle graceful shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 30 * time.Second,
	}

	return handleGracefulShutdown(server)
}

func handleGracefulShutdown(server *http.Server) error {
	// Channel to listen for interrupt signal
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Listening on http://localhost%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("❌ Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	<-stop
	log.Printf("🛑 Shutdown signal received, cleaning up...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown server gracefully
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("❌ Server shutdown error: %v", err)
		return err
	}

	log.Printf("✅ Server stopped gracefully")
	return nil
}
