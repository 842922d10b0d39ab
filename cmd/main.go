package main

import (
	"net/http"
	"os"

	"catalog_service/config"
	"catalog_service/internal/delivery"
	"catalog_service/internal/repository"
	"catalog_service/internal/storage"
	"catalog_service/internal/usecase"
	"catalog_service/pkg/db"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const serviceVersion = "1.0.0"

func main() {
	//  Configuration and Logging Setup
	logger := logrus.New()
	logger.SetOutput(os.Stdout)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.LoadConfig(logger)

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Warnf("Unknown log level %q, falling back to info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	logger.Info("Starting E-Commerce Catalog Service...")

	// --- Database Connection ---
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	if err := db.CreateSchema(database); err != nil {
		logger.Fatalf("Failed to create database schema: %v", err)
	}
	logger.Info("Database connection established.")

	// --- Dependency Injection ---
	fileStore := storage.NewDiskFileStore(cfg.UploadDir, logger)
	productRepo := repository.NewPostgresProductRepository(database, logger, cfg.PaginationRawOffset)
	productUseCase := usecase.NewProductUseCase(productRepo, fileStore, logger)
	productHandler := delivery.NewProductHandler(productUseCase, logger)
	logger.Info("Handlers initialized.")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger))
	router.Use(recovery(logger))

	// Route Registration
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "E-Commerce Catalog API",
			"version": serviceVersion,
		})
	})
	// Uploaded images are served back under the same prefix they are stored
	// with, so the paths recorded on products resolve as URLs.
	router.Static("/"+cfg.UploadDir, cfg.UploadDir)

	v1 := router.Group("/api/v1")
	productHandler.RegisterRoutes(v1)
	logger.Info("API Routes registered.")

	//  Start Server
	logger.Infof("Starting server on port %s", cfg.HTTPPort)
	if err := router.Run(cfg.HTTPPort); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		}).Info("Request received")
		c.Next()
		logger.WithFields(logrus.Fields{
			"status": c.Writer.Status(),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
		}).Info("Request completed")
	}
}

// recovery is the process-wide fallback: whatever escapes the handlers is
// logged and answered with a fixed localized message, never a stack trace.
func recovery(logger *logrus.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithField("panic", recovered).Error("Unhandled error while serving request")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"detail": delivery.MsgInternalError})
	})
}
