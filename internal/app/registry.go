package app

import (
	"database/sql"
	"os"
	"time"

	"go-outpass/internal/gate"
	"go-outpass/internal/messaging/kafka"
	"go-outpass/internal/outpass"
	"go-outpass/internal/report"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	outpassRepo := outpass.NewRepository(gormDB)
	entryRepo := gate.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Services ---
	outpassService := outpass.NewService(db, outpassRepo)
	gateService := gate.NewService(db, outpassRepo, entryRepo, outboxRepo)
	reportService := report.NewService(newRecordSource(gormDB), db, outboxRepo, rdb)

	// --- Handlers ---
	outpassHandler := outpass.NewHandler(outpassService)
	gateHandler := gate.NewHandler(gateService)
	reportHandler := report.NewHandler(reportService)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		outpass.RegisterRoutes(api, outpassHandler, rdb)
		gate.RegisterRoutes(api, gateHandler)
		report.RegisterRoutes(api, reportHandler)
	}

	return nil
}

// newRecordSource prefers an upstream reports API when configured and falls
// back to reading the local outpasses table.
func newRecordSource(gormDB *gorm.DB) report.RecordSource {
	if url := os.Getenv("REPORTS_API_URL"); url != "" {
		return report.NewHTTPSource(url, 15*time.Second)
	}
	return outpass.NewReportSource(gormDB)
}
