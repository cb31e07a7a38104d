package handlers

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/SscSPs/payments_engine/internal/adapters/csvio"
	portssvc "github.com/SscSPs/payments_engine/internal/core/ports/services"
	"github.com/SscSPs/payments_engine/internal/dto"
	"github.com/SscSPs/payments_engine/internal/middleware"
	"github.com/SscSPs/payments_engine/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// accountHandler serves the ledger snapshot.
type accountHandler struct {
	ledger portssvc.LedgerReaderSvc
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(ledger portssvc.LedgerReaderSvc) *accountHandler {
	return &accountHandler{ledger: ledger}
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, ledger portssvc.LedgerReaderSvc) {
	h := newAccountHandler(ledger)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/:clientID", h.getAccount)
	}
}

// listAccountsParams are the query parameters of listAccounts. limit and
// after page through the JSON listing.
type listAccountsParams struct {
	Format string `form:"format" binding:"omitempty,oneof=json csv"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=10000"`
	After  string `form:"after"`
}

// listAccounts returns accounts ordered by client id, as JSON or, with
// ?format=csv, the full snapshot in the same CSV layout the command-line tool
// prints.
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params listAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid list accounts query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query: " + err.Error()})
		return
	}
	format := params.Format
	if format == "" {
		format = "json"
	}

	var after *uint16
	if params.After != "" {
		id, err := pagination.DecodeClientCursor(params.After)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		after = &id
	}

	accounts, err := h.ledger.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to read ledger snapshot")
		return
	}

	if format == "csv" {
		c.Status(http.StatusOK)
		c.Header("Content-Type", "text/csv; charset=utf-8")
		if err := csvio.NewWriter(c.Writer).WriteAccounts(accounts); err != nil {
			logger.Error("Failed to write CSV snapshot", slog.String("error", err.Error()))
		}
		return
	}

	if after != nil {
		start := sort.Search(len(accounts), func(i int) bool { return accounts[i].ClientID > *after })
		accounts = accounts[start:]
	}
	resp := dto.ToListAccountsResponse(accounts)
	if params.Limit > 0 && len(accounts) > params.Limit {
		resp = dto.ToListAccountsResponse(accounts[:params.Limit])
		resp.NextCursor = pagination.EncodeClientCursor(accounts[params.Limit-1].ClientID)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	clientID, err := strconv.ParseUint(c.Param("clientID"), 10, 16)
	if err != nil {
		logger.Warn("Invalid client id", slog.String("client_id", c.Param("clientID")))
		c.JSON(http.StatusBadRequest, gin.H{"error": "client id must be an integer between 0 and 65535"})
		return
	}

	acc, err := h.ledger.GetAccount(c.Request.Context(), uint16(clientID))
	if err != nil {
		respondError(c, logger, err, "Failed to get account")
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(acc))
}
