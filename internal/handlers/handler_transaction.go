package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/payments_engine/internal/adapters/csvio"
	"github.com/SscSPs/payments_engine/internal/apperrors"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/dto"
	"github.com/SscSPs/payments_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// MaxUploadBytes caps the size of one uploaded CSV stream.
const MaxUploadBytes = 64 << 20

// transactionHandler turns an uploaded CSV body into a stream.
type transactionHandler struct {
	streams portssvc.StreamProcessorSvc
}

func newTransactionHandler(streams portssvc.StreamProcessorSvc) *transactionHandler {
	return &transactionHandler{streams: streams}
}

func registerTransactionRoutes(rg *gin.RouterGroup, streams portssvc.StreamProcessorSvc, limit gin.HandlerFunc) {
	h := newTransactionHandler(streams)
	rg.POST("/transactions", limit, h.uploadTransactions)
}

// uploadTransactions processes the request body as one stream and reports
// what happened to it. Rejected records do not fail the request.
func (h *transactionHandler) uploadTransactions(c *gin.Context) {
	ctx := c.Request.Context()
	logger := middleware.GetLoggerFromCtx(ctx)

	source := "http"
	if requestID, ok := middleware.GetRequestIDFromContext(c); ok {
		source = "http:" + requestID
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes)
	report, err := h.streams.ProcessStream(ctx, csvio.NewReader(body, source, "http"))
	resp := dto.ToStreamReportResponse(report, err)
	if err == nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, apperrors.ErrRepositoryFailure):
		logger.Error("Stream aborted by storage failure", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, resp)
	case errors.As(err, &tooLarge):
		logger.Warn("Upload too large", slog.Int64("limit", tooLarge.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, resp)
	default:
		logger.Warn("Stream aborted", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, resp)
	}
}
