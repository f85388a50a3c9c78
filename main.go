package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/223MapAction/Model-deploy/internal/chat"
	"github.com/223MapAction/Model-deploy/internal/client"
	"github.com/223MapAction/Model-deploy/internal/config"
	"github.com/223MapAction/Model-deploy/internal/db"
	"github.com/223MapAction/Model-deploy/internal/handler"
	"github.com/223MapAction/Model-deploy/internal/queue"
	"github.com/223MapAction/Model-deploy/internal/service"
	"github.com/223MapAction/Model-deploy/internal/storage"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Mode != "worker" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	database, err := db.NewPostgres(ctx, cfg.Postgres, log)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.EnsurePredictionSchema(ctx); err != nil {
		return err
	}
	if err := database.EnsureChatHistorySchema(ctx); err != nil {
		return err
	}

	q, err := queue.New(cfg.Redis, log)
	if err != nil {
		return err
	}
	defer q.Close()

	textClient, err := client.NewTextClient(cfg.GenAI)
	if err != nil {
		return err
	}

	impact := chat.NewImpactCache(cfg.Chat.ImpactTTL)
	impact.StartJanitor(ctx, 10*time.Minute)

	runWorker := cfg.Mode == "worker" || cfg.Mode == "all"
	runAPI := cfg.Mode == "api" || cfg.Mode == "all"

	if runWorker {
		visionClient, err := client.NewVisionClient(cfg.GenAI)
		if err != nil {
			return err
		}
		earthObs := client.NewEarthObsClient(cfg.EarthObs)

		classifySvc := service.NewClassifyService(visionClient, log)
		contextSvc := service.NewContextService(textClient)
		zoneSvc := service.NewZoneService(earthObs, textClient, impact, log)

		worker := queue.NewWorker(q, log)
		service.RegisterTasks(worker, classifySvc, contextSvc, zoneSvc)
		go func() {
			if err := worker.Run(ctx); err != nil {
				log.Error().Err(err).Msg("worker stopped")
			}
		}()
	}

	if !runAPI {
		<-ctx.Done()
		return nil
	}

	uploader, err := storage.NewUploader(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	images := client.NewImageFetcher(cfg.ImageServer)
	predictSvc := service.NewPredictService(images, service.QueueSubmitter{Q: q}, uploader, database, log)

	store := chat.NewStore(database, log)
	defer store.Flush()
	chatSvc := service.NewChatService(database, textClient, store, impact, log)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.CORS(cfg.Chat.AllowedOrigins))

	predictHandler := handler.NewPredictHandler(predictSvc, log)
	chatHandler := handler.NewChatHandler(chatSvc, cfg.Chat, log)
	historyHandler := handler.NewHistoryHandler(chatSvc, log)

	router.GET("/", handler.Root)
	router.GET("/ping", handler.Ping)
	router.POST("/image/predict", predictHandler.Predict)
	router.GET("/ws/chat", chatHandler.Serve)
	router.GET("/MapApi/history/:chat_key", historyHandler.Get)

	log.Info().Str("addr", cfg.ListenAddr).Str("mode", cfg.Mode).Msg("listening")
	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
