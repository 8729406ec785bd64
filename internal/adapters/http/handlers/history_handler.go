package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbridge/walletplatform/internal/apperrors"
	"github.com/ledgerbridge/walletplatform/internal/domain"
)

const (
	defaultLimit = 50
	maxLimit     = 100
)

// HistoryQuery is the History Handler's view of the History Store's
// read side.
type HistoryQuery interface {
	ListByWallet(ctx context.Context, walletID string, limit, offset int) ([]domain.HistoryRecord, int, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.HistoryRecord, int, error)
}

// HistoryHandler is the HTTP adapter for the History Service API.
type HistoryHandler struct {
	query HistoryQuery
}

func NewHistoryHandler(query HistoryQuery) *HistoryHandler {
	return &HistoryHandler{query: query}
}

// HistoryEvent is one item of `events[]`: `{wallet_id, user_id,
// amount, event_type, event_data}` where event_data is the original
// event payload verbatim.
type HistoryEvent struct {
	WalletID  string          `json:"wallet_id"`
	UserID    string          `json:"user_id"`
	Amount    string          `json:"amount"`
	EventType string          `json:"event_type"`
	EventData json.RawMessage `json:"event_data"`
}

func toHistoryEvent(r domain.HistoryRecord) HistoryEvent {
	return HistoryEvent{
		WalletID:  r.WalletID,
		UserID:    r.UserID,
		Amount:    r.Amount.String(),
		EventType: string(r.EventType),
		EventData: json.RawMessage(r.RawEvent),
	}
}

// WalletHistoryResponse backs `GET /history/wallets/{id}`.
type WalletHistoryResponse struct {
	WalletID string         `json:"wallet_id"`
	Events   []HistoryEvent `json:"events"`
	Total    int            `json:"total"`
	Limit    int            `json:"limit"`
	Offset   int            `json:"offset"`
}

// UserHistoryResponse backs `GET /history/users/{id}`.
type UserHistoryResponse struct {
	UserID string         `json:"user_id"`
	Events []HistoryEvent `json:"events"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// parsePagination enforces the `limit` (1-100, default 50) and
// `offset` (>=0, default 0) query parameter rules.
func parsePagination(c *gin.Context) (limit, offset int, err error) {
	limit = defaultLimit
	offset = 0

	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, apperrors.NewValidationError("limit", "must be an integer between 1 and 100")
		}
	}
	if v := c.Query("offset"); v != "" {
		offset, err = strconv.Atoi(v)
		if err != nil || offset < 0 {
			return 0, 0, apperrors.NewValidationError("offset", "must be a non-negative integer")
		}
	}
	return limit, offset, nil
}

// GetWalletHistory handles `GET /history/wallets/{id}`.
func (h *HistoryHandler) GetWalletHistory(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}

	walletID := c.Param("id")
	records, total, err := h.query.ListByWallet(c.Request.Context(), walletID, limit, offset)
	if err != nil {
		apperrors.HandleDomainError(c, apperrors.NewIntegrityError("list_by_wallet", err))
		return
	}

	events := make([]HistoryEvent, 0, len(records))
	for _, r := range records {
		events = append(events, toHistoryEvent(r))
	}
	apperrors.Success(c, http.StatusOK, WalletHistoryResponse{
		WalletID: walletID, Events: events, Total: total, Limit: limit, Offset: offset,
	})
}

// GetUserHistory handles `GET /history/users/{id}`.
func (h *HistoryHandler) GetUserHistory(c *gin.Context) {
	limit, offset, err := parsePagination(c)
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}

	userID := c.Param("id")
	records, total, err := h.query.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		apperrors.HandleDomainError(c, apperrors.NewIntegrityError("list_by_user", err))
		return
	}

	events := make([]HistoryEvent, 0, len(records))
	for _, r := range records {
		events = append(events, toHistoryEvent(r))
	}
	apperrors.Success(c, http.StatusOK, UserHistoryResponse{
		UserID: userID, Events: events, Total: total, Limit: limit, Offset: offset,
	})
}

// RegisterRoutes wires the History Service's route table.
func (h *HistoryHandler) RegisterRoutes(router gin.IRouter) {
	router.GET("/history/wallets/:id", h.GetWalletHistory)
	router.GET("/history/users/:id", h.GetUserHistory)
}
