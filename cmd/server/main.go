package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/content"
	"portfolio-backend/internal/conversation"
	"portfolio-backend/internal/database"
	"portfolio-backend/internal/handlers"
	"portfolio-backend/internal/log"
	"portfolio-backend/internal/middleware"
	"portfolio-backend/internal/router"
	"portfolio-backend/internal/sections"
	"portfolio-backend/internal/services"
	"portfolio-backend/internal/session"
	"portfolio-backend/internal/websocket"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Init(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()
	log.Info("🚀 Starting Portfolio Backend...")
	log.Info("✓ Environment variables loaded")

	// ──── Step 2: Load Portfolio Content ────
	store, err := content.Load(cfg.ContentPath)
	if err != nil {
		log.Fatal("✗ Content load failed", err)
	}
	portfolio := store.Portfolio()
	log.Infof("✓ Content loaded (%d projects)", len(portfolio.Projects))

	// ──── Step 3: Initialize Completion Client ────
	completer, closeCompleter, err := services.NewCompleter(services.CompleterConfig{
		Provider:        cfg.CompletionProvider,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		OpenAIModel:     cfg.OpenAIModel,
		ConcurrentReqs:  cfg.CompletionConcurrent,
		MissingKeyReply: portfolio.Assistant.MissingKeyReply,
	})
	if err != nil {
		log.Fatal("✗ Completion client initialization failed", err)
	}
	defer closeCompleter()
	log.Infof("✓ Completion client initialized (%s)", cfg.CompletionProvider)

	// ──── Step 4: Initialize Redis Clients (optional) ────
	var redisClients *database.RedisClients
	if cfg.RedisURL != "" {
		redisClients, err = database.NewRedisClients(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal("✗ Redis connection failed", err)
		}
		defer redisClients.Close()
		log.Info("✓ Redis connected")
	} else {
		log.Info("✓ Redis not configured, session events delivered in-process")
	}

	// ──── Step 5: Start WebSocket Hub and Session Store ────
	sessionAuth := middleware.NewSessionAuth(cfg.JWTSecret, cfg.SessionTTL)

	var wsHub *websocket.Hub
	if redisClients != nil {
		wsHub = websocket.NewHub(redisClients.Publish, redisClients.PubSub, sessionAuth, nil)
	} else {
		wsHub = websocket.NewHub(nil, nil, sessionAuth, nil)
	}

	sessions := session.NewStore(completer, session.Config{
		SectionPolicy: sections.ParsePolicy(cfg.SectionPolicy),
		Conversation: conversation.Options{
			Greeting:       portfolio.Assistant.Greeting,
			SystemPreamble: services.BuildSystemPreamble(portfolio),
			Timeout:        cfg.CompletionTimeout,
			HistoryWindow:  cfg.ChatHistoryWindow,
		},
		TTL: cfg.SessionTTL,
	}, wsHub)
	wsHub.SetSessions(sessions)
	sessions.Start()
	log.Infof("✓ Session store started (ttl %s, section policy %s)", cfg.SessionTTL, cfg.SectionPolicy)

	// ──── Initialize Services ────
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	contactTo := cfg.ContactTo
	if contactTo == "" {
		contactTo = portfolio.Personal.Email
	}
	contactService := services.NewContactService(cfg.FormspreeFormID, emailService, contactTo)

	// ──── Initialize Handlers ────
	h := router.Handlers{
		Content: handlers.NewContentHandler(store),
		Session: handlers.NewSessionHandler(sessions, sessionAuth),
		Chat:    handlers.NewChatHandler(sessions),
		Contact: handlers.NewContactHandler(contactService),
	}
	limiters := router.NewLimiters()

	// ──── Step 6: Start HTTP Server ────
	r := router.New(sessionAuth, h, limiters, wsHub, cfg.FrontendURL)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.CompletionTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Shutting down...")
		limiters.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		wsHub.Close()
		sessions.Stop()
	}()

	log.Infof("✓ Portfolio Backend ready on http://localhost:%s", cfg.Port)
	log.Infof("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Infof("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Server error", err)
	}
	<-shutdownDone
}
