package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"notesweb/config"
	"notesweb/handler"
	"notesweb/middleware"
	"notesweb/repository"
	"notesweb/usecase"
	"notesweb/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

func init() {
	// A missing .env is fine; the environment may already be set.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		utils.Logger.Fatalf("Error loading .env file: %v", err)
	}
}

func setupRouter(cfg config.WebConfig, notesService *usecase.NotesService) *gin.Engine {
	router := gin.New()
	// Escaped note ids ("a%2Fb") must reach :id as a single segment.
	router.UseRawPath = true
	router.SetHTMLTemplate(handler.LoadTemplates())

	router.Use(middleware.RequestTracingMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.EnhancedRecoveryMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimiter(cfg.MaxBodyBytes))

	notesHandler := handler.NewNotesHandler(notesService)

	router.GET("/healthz", notesHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/api/stats", middleware.NoStore(), notesHandler.Stats)

	pages := router.Group("/")
	pages.Use(middleware.NoStore())
	{
		pages.GET("/", notesHandler.Index)
		pages.GET("/notes/new", notesHandler.NewNote)
		pages.GET("/notes/:id/edit", notesHandler.EditNote)
	}

	mutations := router.Group("/notes")
	mutations.Use(middleware.MutationRateLimiter(cfg.MutationRPS, cfg.MutationBurst))
	{
		mutations.POST("", notesHandler.CreateNote)
		mutations.POST("/:id", notesHandler.UpdateNote)
		mutations.POST("/:id/delete", notesHandler.DeleteNote)
		mutations.POST("/:id/pin", notesHandler.TogglePinned)
		mutations.POST("/:id/favorite", notesHandler.ToggleFavorite)
	}

	return router
}

func main() {
	cfg := config.Load()

	utils.InitLogger(utils.LogConfig{
		Level:  cfg.Web.LogLevel,
		Format: cfg.Web.LogFormat,
	})
	utils.InitValidator()

	executor := repository.NewExecutor(cfg.Client, nil)
	notesService := usecase.NewNotesService(repository.NewNotesRepo(executor))

	router := setupRouter(cfg.Web, notesService)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Web.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Logger.WithFields(logrus.Fields{
			"addr":      srv.Addr,
			"notes_api": executor.BaseURL(),
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)
	sig := <-signalChan
	utils.Logger.Infof("Caught signal %s, shutting down", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.Logger.Errorf("Server shutdown failed: %v", err)
		return
	}
	utils.Logger.Info("Server shutdown complete")
}
