package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/ssmgcode/cargo-expreso-control/internal/config"
	handler "github.com/ssmgcode/cargo-expreso-control/internal/handlers"
	"github.com/ssmgcode/cargo-expreso-control/internal/repository"
	service "github.com/ssmgcode/cargo-expreso-control/internal/services/reconciliation"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg *config.AppConfig) {
	guideRepo := repository.NewGuideRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)
	batchRepo := repository.NewBatchRepository(db)

	reconService := service.NewReconciliationService(
		guideRepo,
		settlementRepo,
		batchRepo,
		service.Options{
			DropFooter:       cfg.DropFooterRow,
			IncludeGuideType: cfg.IncludeGuideType,
		},
	)

	reportCache := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	reconHandler := handler.NewReconciliationHandler(reconService, reportCache, handler.SheetOptions{
		SheetName:           cfg.SheetName,
		SettlementHeaderRow: cfg.SettlementHeaderRow,
	})

	api := r.Group("/api")
	api.Use(RateLimit(rate.NewLimiter(rate.Every(DefaultRateInterval), DefaultRateBurst)))

	// Health check
	api.GET("/health", reconHandler.Health)

	api.GET("/guides/:id", reconHandler.GetGuide)
	api.POST("/guides/upload", reconHandler.UploadGuides)

	api.GET("/settlements", reconHandler.ListSettlements)
	api.POST("/settlements/upload", reconHandler.UploadSettlements)

	batches := api.Group("/batches")
	{
		batches.GET("/:batchId", reconHandler.GetBatch)
		batches.GET("/:batchId/audits", reconHandler.ListAudits)
	}
}
