// Package httpapi exposes the till over JSON HTTP.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/balance"
	"github.com/cleared-dev/cashbox/internal/cashbox"
	"github.com/cleared-dev/cashbox/internal/logging"
	"github.com/cleared-dev/cashbox/internal/model"
	"github.com/cleared-dev/cashbox/internal/money"
	"github.com/cleared-dev/cashbox/internal/reconcile"
)

// Service is the subset of *cashbox.Service the handlers call.
type Service interface {
	BaseCurrency() string
	OpenShift(p cashbox.OpenParams) (cashbox.OpenResult, error)
	PreviewOpen(p cashbox.OpenParams) (reconcile.Report, []model.Entry, error)
	CloseShift(p cashbox.CloseParams) (cashbox.CloseResult, error)
	PreviewClose(p cashbox.CloseParams) (reconcile.Report, error)
	RecordEntry(p cashbox.RecordParams) (model.Entry, error)
	TransferFunds(p cashbox.TransferParams) (cashbox.TransferResult, error)
	RunningLedger(sinceShiftOpen bool) ([]balance.Row, error)
	AccountSummaries() []balance.Summary
	CurrentSession() (model.Session, bool)
	Sessions() []model.Session
	CountDenominations(counts []money.Count) (cashbox.CountResult, error)
}

var _ Service = (*cashbox.Service)(nil)

// NewRouter builds the engine with logging, recovery, health, metrics from
// gatherer, and the /api/v1 routes.
func NewRouter(svc Service, log *zap.Logger, gatherer prometheus.Gatherer) *gin.Engine {
	log = logging.OrNop(log)
	r := gin.New()
	r.Use(RequestLogger(log))
	r.Use(Recovery(log))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	RegisterRoutes(r.Group("/api/v1"), svc, log)
	return r
}

// RegisterRoutes mounts the till handlers on rg.
func RegisterRoutes(rg *gin.RouterGroup, svc Service, log *zap.Logger) {
	h := &handler{svc: svc, log: logging.OrNop(log)}

	shift := rg.Group("/shift")
	{
		shift.GET("", h.currentShift)
		shift.POST("/open", h.openShift)
		shift.POST("/open/preview", h.previewOpen)
		shift.POST("/close", h.closeShift)
		shift.POST("/close/preview", h.previewClose)
	}
	rg.GET("/shifts", h.listShifts)
	rg.POST("/entries", h.recordEntry)
	rg.POST("/transfers", h.transferFunds)
	rg.GET("/ledger", h.runningLedger)
	rg.GET("/accounts/summary", h.accountSummaries)
	rg.POST("/count", h.countDenominations)
}
