package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/sync/errgroup"

	"party-service/internal/auth"
	"party-service/internal/config"
	"party-service/internal/db"
	"party-service/internal/discovery"
	"party-service/internal/handlers"
	"party-service/internal/middleware"
	"party-service/internal/party"
	"party-service/internal/rabbitmq"
	"party-service/internal/repositories"
	"party-service/internal/telemetry"
	"party-service/internal/ws"

	"party-service/internal/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using system environment")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.OTLPAddr, "party-service", cfg.Env)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
	} else {
		defer func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracing(flushCtx)
		}()
	}

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	observability.SetPublisher(publisher)

	emitter := telemetry.NewAuditEmitter(publisher, "audit_log.party", "party-service", cfg.Env)

	partyRepo := repositories.NewPartyRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	reactionRepo := repositories.NewReactionRepo(database)

	hub := ws.NewHub()
	lifecycle := party.NewLifecycle(partyRepo, hub)
	discoveryService := discovery.NewService(partyRepo, 3*time.Second)
	verifier := auth.NewJWTVerifier(cfg.JWTSecret)

	partyHandler := handlers.NewPartyHandler(lifecycle, partyRepo, emitter)
	chatHandler := handlers.NewChatHandler(partyRepo, messageRepo, hub)
	reactionHandler := handlers.NewReactionHandler(partyRepo, reactionRepo, hub)
	discoveryHandler := handlers.NewDiscoveryHandler(discoveryService)
	partyWS := ws.NewPartyWebSocketHandler(hub, partyRepo, messageRepo, reactionRepo, verifier)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("party-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/parties", authMiddleware, partyHandler.CreateParty)
	router.GET("/parties/public", authMiddleware, discoveryHandler.ListPublic)
	router.GET("/parties/:party_id", authMiddleware, partyHandler.GetParty)
	router.POST("/parties/:party_id/join", authMiddleware, partyHandler.JoinParty)
	router.POST("/parties/:party_id/leave", authMiddleware, partyHandler.LeaveParty)
	router.DELETE("/parties/:party_id", authMiddleware, partyHandler.TerminateParty)
	router.POST("/parties/:party_id/status", authMiddleware, partyHandler.UpdateStatus)
	router.POST("/parties/:party_id/episode", authMiddleware, partyHandler.UpdateEpisode)
	router.GET("/parties/:party_id/messages", authMiddleware, chatHandler.ListMessages)
	router.POST("/parties/:party_id/messages", authMiddleware, chatHandler.PostMessage)
	router.POST("/parties/:party_id/reactions", authMiddleware, reactionHandler.PostReaction)

	// Invite-link resolution: <origin>/party/<id>.
	router.GET("/party/:party_id", authMiddleware, partyHandler.GetParty)

	router.GET("/ws/parties/:party_id", partyWS.HandleSession)
	router.GET("/ws/parties/:party_id/chat", partyWS.HandleChat)
	router.GET("/ws/parties/:party_id/reactions", partyWS.HandleReactions)

	handlers.RegisterDebugRoutes(router, emitter, cfg.DebugRoutes)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Printf("party service listening on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
