// Package handlers holds the HTTP adapters for both services' APIs:
// one handler struct per resource, constructed with the narrow
// use-case interfaces it needs, request DTOs validated via Gin's
// binding tags (go-playground/validator), responses rendered through
// the shared apperrors envelope (internal/apperrors/http.go).
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledgerbridge/walletplatform/internal/apperrors"
	"github.com/ledgerbridge/walletplatform/internal/domain"
	"github.com/ledgerbridge/walletplatform/internal/money"
)

// WalletEngine is the Wallet Handler's view of the wallet engine —
// narrow enough that tests can fake it without a real UnitOfWork.
type WalletEngine interface {
	CreateWallet(ctx context.Context, userID string) (domain.Wallet, error)
	FundWallet(ctx context.Context, walletID string, amount money.Amount) (domain.Wallet, error)
	TransferFunds(ctx context.Context, fromID, toID string, amount money.Amount) (domain.TransferReceipt, error)
	GetWallet(ctx context.Context, id string) (domain.Wallet, error)
	ListWalletsByUser(ctx context.Context, userID string) ([]domain.Wallet, error)
}

// WalletHandler is the HTTP adapter for the Wallet Service API.
type WalletHandler struct {
	engine WalletEngine
}

func NewWalletHandler(engine WalletEngine) *WalletHandler {
	return &WalletHandler{engine: engine}
}

// WalletResponse is the wallet read model: `{id, user_id, balance, version}`.
type WalletResponse struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	Balance string `json:"balance"`
	Version int64  `json:"version"`
}

func toWalletResponse(w domain.Wallet) WalletResponse {
	return WalletResponse{ID: w.ID, UserID: w.UserID, Balance: w.Balance.String(), Version: w.Version}
}

// WalletListResponse backs `GET /users/{id}/wallets`.
type WalletListResponse struct {
	Wallets []WalletResponse `json:"wallets"`
}

// TransferResponse echoes a committed transfer back to the caller.
type TransferResponse struct {
	FromWalletID string `json:"from_wallet_id"`
	ToWalletID   string `json:"to_wallet_id"`
	Amount       string `json:"amount"`
}

// CreateWalletRequest is the `POST /wallets` body.
type CreateWalletRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// FundWalletRequest is the `POST /wallets/{id}/fund` body.
type FundWalletRequest struct {
	Amount string `json:"amount" binding:"required"`
}

// TransferRequest is the `POST /wallets/{id}/transfer` body.
type TransferRequest struct {
	ToWalletID string `json:"to_wallet_id" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

// CreateWallet handles `POST /wallets`.
func (h *WalletHandler) CreateWallet(c *gin.Context) {
	var req CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleDomainError(c, apperrors.NewValidationError("user_id", err.Error()))
		return
	}

	wallet, err := h.engine.CreateWallet(c.Request.Context(), req.UserID)
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}
	apperrors.Success(c, http.StatusOK, toWalletResponse(wallet))
}

// FundWallet handles `POST /wallets/{id}/fund`.
func (h *WalletHandler) FundWallet(c *gin.Context) {
	var req FundWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleDomainError(c, apperrors.NewValidationError("amount", err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		apperrors.HandleDomainError(c, apperrors.NewValidationError("amount", err.Error()))
		return
	}

	wallet, err := h.engine.FundWallet(c.Request.Context(), c.Param("id"), amount)
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}
	apperrors.Success(c, http.StatusOK, toWalletResponse(wallet))
}

// Transfer handles `POST /wallets/{id}/transfer`.
func (h *WalletHandler) Transfer(c *gin.Context) {
	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.HandleDomainError(c, apperrors.NewValidationError("body", err.Error()))
		return
	}

	amount, err := money.Parse(req.Amount)
	if err != nil {
		apperrors.HandleDomainError(c, apperrors.NewValidationError("amount", err.Error()))
		return
	}

	receipt, err := h.engine.TransferFunds(c.Request.Context(), c.Param("id"), req.ToWalletID, amount)
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}
	apperrors.Success(c, http.StatusOK, TransferResponse{
		FromWalletID: receipt.FromWalletID,
		ToWalletID:   receipt.ToWalletID,
		Amount:       receipt.Amount.String(),
	})
}

// GetWallet handles `GET /wallets/{id}`.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	wallet, err := h.engine.GetWallet(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}
	apperrors.Success(c, http.StatusOK, toWalletResponse(wallet))
}

// ListWalletsByUser handles `GET /users/{id}/wallets`.
func (h *WalletHandler) ListWalletsByUser(c *gin.Context) {
	wallets, err := h.engine.ListWalletsByUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperrors.HandleDomainError(c, err)
		return
	}
	resp := WalletListResponse{Wallets: make([]WalletResponse, 0, len(wallets))}
	for _, w := range wallets {
		resp.Wallets = append(resp.Wallets, toWalletResponse(w))
	}
	apperrors.Success(c, http.StatusOK, resp)
}

// RegisterRoutes wires the Wallet Service's route table.
func (h *WalletHandler) RegisterRoutes(router gin.IRouter) {
	router.POST("/wallets", h.CreateWallet)
	router.GET("/wallets/:id", h.GetWallet)
	router.POST("/wallets/:id/fund", h.FundWallet)
	router.POST("/wallets/:id/transfer", h.Transfer)
	router.GET("/users/:id/wallets", h.ListWalletsByUser)
}
