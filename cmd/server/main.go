package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"gemini-chat/internal/config"
	"gemini-chat/internal/database"
	"gemini-chat/internal/handlers"
	"gemini-chat/internal/middleware"
	"gemini-chat/internal/render"
	"gemini-chat/internal/repository"
	"gemini-chat/internal/router"
	"gemini-chat/internal/services"
	"gemini-chat/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Gemini Chat...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	sessionTTL := time.Duration(cfg.SessionTTLHours) * time.Hour

	// ──── Step 2: Initialize Redis Clients (optional) ────
	var redisStore, redisPubSub *redis.Client
	if cfg.RedisURL != "" {
		redisClients, err := database.NewRedisClients(cfg.RedisURL)
		if err != nil {
			log.Fatalf("✗ Redis connection failed: %v", err)
		}
		defer redisClients.Close()
		redisStore, redisPubSub = redisClients.Store, redisClients.PubSub
		log.Println("✓ Redis connected")
	} else {
		log.Println("✓ No REDIS_URL, using in-memory sessions and reply cache")
	}

	// ──── Step 3: Initialize Gemini Client ────
	var transport services.Transport
	switch cfg.GeminiTransport {
	case "sdk":
		sdk, err := services.NewSDKTransport(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer sdk.Close()
		transport = sdk
	default:
		transport = services.NewRESTTransport(cfg.GeminiBaseURL, cfg.GeminiModel, cfg.GeminiAPIKey)
	}

	var replyCache services.ReplyCache = services.NewMemoryReplyCache()
	if redisStore != nil {
		replyCache = services.NewRedisReplyCache(redisStore, cfg.GeminiModel, 0)
	}
	geminiClient := services.NewGeminiClient(transport, replyCache)
	log.Printf("✓ Gemini client initialized (%s, %s transport)", cfg.GeminiModel, cfg.GeminiTransport)

	// ──── Step 4: Initialize Sessions ────
	wsHub := websocket.NewHub(redisPubSub)

	var reaper *services.SessionReaper
	var chatService *services.ChatService
	if redisStore != nil {
		chatService = services.NewChatService(repository.NewRedisSessionRepo(redisStore, sessionTTL), geminiClient, wsHub)
	} else {
		memRepo := repository.NewMemorySessionRepo()
		chatService = services.NewChatService(memRepo, geminiClient, wsHub)
		reaper = services.NewSessionReaper(memRepo, sessionTTL)
		reaper.Start()
	}
	log.Println("✓ Session store ready")

	// ──── Step 5: Initialize Handlers ────
	page, err := render.NewPage()
	if err != nil {
		log.Fatalf("✗ Template initialization failed: %v", err)
	}
	chatHandler := handlers.NewChatHandler(chatService, page)
	sessionCookie := middleware.NewSessionCookie(cfg.SessionSecret, sessionTTL, cfg.Env == "production")
	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimitPerMin, time.Minute)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(sessionCookie, chatHandler, wsHub, chatLimiter)

	// No write timeout: a submission waits for Gemini however long it takes.
	server := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		if reaper != nil {
			reaper.Stop()
		}
		chatLimiter.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Gemini Chat ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
