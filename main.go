package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/rankforge/backend/aeo"
	"github.com/rankforge/backend/aiwriter"
	"github.com/rankforge/backend/competitor"
	"github.com/rankforge/backend/config"
	"github.com/rankforge/backend/crawler"
	"github.com/rankforge/backend/gaps"
	"github.com/rankforge/backend/geo"
	"github.com/rankforge/backend/lighthouse"
	"github.com/rankforge/backend/logging"
	"github.com/rankforge/backend/middleware"
	"github.com/rankforge/backend/models"
	"github.com/rankforge/backend/pipeline"
	"github.com/rankforge/backend/predictor"
	"github.com/rankforge/backend/scorer"
	"github.com/rankforge/backend/semantic"
	"github.com/rankforge/backend/stats"
	"github.com/rankforge/backend/storage"
	"github.com/rankforge/backend/suggest"
)

func main() {
	cfg := config.Load()

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	usageStats, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize stats storage: %v", err)
	}
	defer usageStats.Shutdown()

	store, err := storage.Open(cfg.DatabasePath)
	if err != nil {
		log.Printf("Report persistence disabled: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	robots := crawler.NewRobotsChecker(nil, cfg.UserAgent, usageStats)
	fetcher := crawler.New(crawler.Options{
		UserAgent:      cfg.UserAgent,
		RequestsPerSec: cfg.CrawlRPS,
		Timeout:        time.Duration(cfg.FetchTimeoutMs) * time.Millisecond,
	}, robots)

	writer := aiwriter.New(cfg.OpenAIAPIKey, nil)
	var aiClient aiwriter.Client
	if writer.Available() {
		aiClient = writer
	}

	var predict predictor.Predictor
	if cfg.EnsembleEnabled {
		predict = predictor.NewEnsemble(cfg.EnsemblePasses)
	} else {
		predict = predictor.NewHeuristic()
	}

	pipe := &pipeline.Pipeline{
		Fetcher:     fetcher,
		Robots:      robots,
		Auditor:     lighthouse.NewService(cfg.GoogleAPIKey, nil),
		Competitors: competitor.NewService(cfg.SerperAPIKey, nil),
		Scorer:      scorer.New(),
		Gaps:        gaps.New(),
		AEO:         aeo.New(aiClient),
		GEO:         geo.New(),
		Semantic:    semantic.New(aiClient),
		Suggest:     suggest.New(aiClient),
		Predictor:   predict,
		Store:       store,
		Stats:       usageStats,
	}

	requestStats := logging.Initialize()
	rateLimiter := middleware.NewRateLimiter(2, 5)

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(rateLimiter.RateLimit())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestStats(requestStats))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		api.POST("/analyze", analyzeHandler(pipe))

		api.GET("/statistics", func(c *gin.Context) {
			snapshot := requestStats.Snapshot()
			snapshot["monthly"] = usageStats.GetCurrentStats()
			c.JSON(http.StatusOK, snapshot)
		})

		api.GET("/reports/:id", func(c *gin.Context) {
			if store == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report persistence is disabled"})
				return
			}
			result, err := store.Get(c.Param("id"))
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					c.JSON(http.StatusNotFound, gin.H{"error": "Report not found"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load report"})
				}
				return
			}
			c.JSON(http.StatusOK, result)
		})

		api.GET("/reports", func(c *gin.Context) {
			if store == nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Report persistence is disabled"})
				return
			}
			rows, err := store.Recent(20)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reports"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"reports": rows})
		})
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
	_ = requestStats.Save()
}

// analyzeTimeout bounds one full pipeline run.
const analyzeTimeout = 120 * time.Second

func analyzeHandler(pipe *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalysisRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid request: url and targetKeyword are required",
			})
			return
		}

		c.Set("analyzedUrl", req.URL)
		c.Set("analyzedKeyword", req.TargetKeyword)

		ctx, cancel := context.WithTimeout(c.Request.Context(), analyzeTimeout)
		defer cancel()

		result, err := pipe.Analyze(ctx, req, nil)
		if err != nil {
			status := http.StatusBadGateway
			var fe *models.FetchError
			if errors.As(err, &fe) && fe.Reason == models.FetchBlocked {
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, result)
	}
}
