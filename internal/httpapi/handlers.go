package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cleared-dev/cashbox/internal/apperrors"
	"github.com/cleared-dev/cashbox/internal/balance"
	"github.com/cleared-dev/cashbox/internal/ledger"
	"github.com/cleared-dev/cashbox/internal/reconcile"
)

type handler struct {
	svc Service
	log *zap.Logger
}

func (h *handler) currentShift(c *gin.Context) {
	s, ok := h.svc.CurrentSession()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"open": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"open": true, "session": toSession(s, h.svc.BaseCurrency())})
}

func (h *handler) listShifts(c *gin.Context) {
	sessions := h.svc.Sessions()
	out := make([]sessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSession(s, h.svc.BaseCurrency())
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (h *handler) openShift(c *gin.Context) {
	var req openShiftRequest
	if !h.bind(c, &req) {
		return
	}
	params, err := req.toParams()
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.OpenShift(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	loggerFrom(c, h.log).Info("shift opened", zap.String("session_id", res.Session.ID))
	c.JSON(http.StatusCreated, gin.H{
		"session":     toSession(res.Session, h.svc.BaseCurrency()),
		"report":      toReport(res.Report),
		"adjustments": toEntryResponses(res.Adjustments),
	})
}

func (h *handler) previewOpen(c *gin.Context) {
	var req openShiftRequest
	if !h.bind(c, &req) {
		return
	}
	params, err := req.toParams()
	if err != nil {
		h.fail(c, err)
		return
	}
	report, adjustments, err := h.svc.PreviewOpen(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":      toReport(report),
		"adjustments": toEntryResponses(adjustments),
	})
}

func (h *handler) closeShift(c *gin.Context) {
	var req closeShiftRequest
	if !h.bind(c, &req) {
		return
	}
	params, err := req.toParams()
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.CloseShift(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	loggerFrom(c, h.log).Info("shift closed", zap.String("session_id", res.Session.ID))
	c.JSON(http.StatusOK, gin.H{
		"session": toSession(res.Session, h.svc.BaseCurrency()),
		"report":  toReport(res.Report),
	})
}

func (h *handler) previewClose(c *gin.Context) {
	var req closeShiftRequest
	if !h.bind(c, &req) {
		return
	}
	params, err := req.toParams()
	if err != nil {
		h.fail(c, err)
		return
	}
	report, err := h.svc.PreviewClose(params)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": toReport(report)})
}

func (h *handler) recordEntry(c *gin.Context) {
	var req recordEntryRequest
	if !h.bind(c, &req) {
		return
	}
	e, err := h.svc.RecordEntry(req.toParams())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEntryResponse(e))
}

func (h *handler) transferFunds(c *gin.Context) {
	var req transferRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.svc.TransferFunds(req.toParams())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"debit":  toEntryResponse(res.Debit),
		"credit": toEntryResponse(res.Credit),
	})
}

// runningLedger serves GET /ledger?since_open=true&filter=CASH.
func (h *handler) runningLedger(c *gin.Context) {
	sinceOpen, err := strconv.ParseBool(c.DefaultQuery("since_open", "true"))
	if err != nil {
		h.fail(c, apperrors.Validation("since_open", "must be true or false"))
		return
	}
	filter, err := ledger.ParseFilter(c.DefaultQuery("filter", string(ledger.FilterAll)))
	if err != nil {
		h.fail(c, err)
		return
	}
	rows, err := h.svc.RunningLedger(sinceOpen)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": toLedgerRows(balance.FilterRows(rows, filter))})
}

func (h *handler) accountSummaries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"accounts": toSummaries(h.svc.AccountSummaries())})
}

func (h *handler) countDenominations(c *gin.Context) {
	var req countRequest
	if !h.bind(c, &req) {
		return
	}
	counts, err := parseDenominations(req.Denominations)
	if err != nil {
		h.fail(c, err)
		return
	}
	res, err := h.svc.CountDenominations(counts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toCount(res, h.svc.BaseCurrency()))
}

func (h *handler) bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		loggerFrom(c, h.log).Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

// fail maps service errors onto status codes. Unacknowledged discrepancies
// return 409 with the report so the client can confirm and resend.
func (h *handler) fail(c *gin.Context, err error) {
	log := loggerFrom(c, h.log)

	var warn *reconcile.Warning
	if errors.As(err, &warn) {
		log.Info("reconciliation needs acknowledgement", zap.Int("discrepancies", len(warn.Report.Discrepancies)))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "report": toReport(warn.Report)})
		return
	}

	switch apperrors.KindOf(err) {
	case apperrors.ErrValidation:
		log.Warn("validation error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.ErrResolution:
		log.Warn("unknown target", zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.ErrStateConflict:
		log.Warn("state conflict", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
