package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

// WalletHandler handles wallet endpoints.
type WalletHandler struct {
	wallets ports.WalletService
	ledger  ports.LedgerService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(wallets ports.WalletService, ledger ports.LedgerService) *WalletHandler {
	return &WalletHandler{wallets: wallets, ledger: ledger}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	allowed, err := h.wallets.CanCreateNew(c.Request.Context(), claims.Identity())
	if err != nil {
		response.Error(c, err)
		return
	}
	if !allowed {
		response.Error(c, apperror.ErrWalletLimitExceeded())
		return
	}

	wallet, err := h.wallets.CreateWallet(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, wallet.Token.String())
	response.Created(c, wallet.View())
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	wallets, err := h.wallets.ListByOwner(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletListResponse(wallets))
}

// Get handles GET /api/v1/wallets/:token.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, ok := h.ownedWallet(c, c.Param("token"))
	if !ok {
		return
	}
	response.OK(c, wallet.View())
}

// Deposit handles POST /api/v1/wallets/deposit.
func (h *WalletHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := domain.ParseAmount(string(req.Amount))
	if err != nil {
		response.Error(c, apperror.FromValidation(err))
		return
	}

	wallet, ok := h.ownedWallet(c, req.Wallet)
	if !ok {
		return
	}

	updated, err := h.wallets.Deposit(c.Request.Context(), wallet.Token, amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, updated.Token.String())
	response.OK(c, updated.View())
}

// Charge handles POST /api/v1/wallets/charge. The calling company's only
// wallet is credited from the wallet named in the body.
func (h *WalletHandler) Charge(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return
	}

	var req dto.ChargeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := domain.ParseAmount(string(req.Amount))
	if err != nil {
		response.Error(c, apperror.FromValidation(err))
		return
	}
	if err := domain.ValidateSummary(req.Summary); err != nil {
		response.Error(c, apperror.FromValidation(err))
		return
	}

	target, err := h.wallets.GetUniqueByOwner(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if target == nil {
		response.Error(c, apperror.ErrNoUniqueWallet())
		return
	}
	if source, ok := domain.ParseToken(req.Wallet); ok && source == target.Token {
		response.Error(c, apperror.ErrSelfCharge())
		return
	}

	c.Set(middleware.CtxResourceID, req.Wallet)
	charged, updated, err := h.wallets.Charge(c.Request.Context(), target, req.Wallet, amount, req.Summary)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !charged {
		response.Error(c, apperror.ErrInsufficientFunds())
		return
	}

	response.OK(c, updated.View())
}

// History handles GET /api/v1/wallets/:token/history.
func (h *WalletHandler) History(c *gin.Context) {
	var q dto.HistoryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, ok := h.ownedWallet(c, c.Param("token"))
	if !ok {
		return
	}

	entries, err := h.ledger.HistoryFor(c.Request.Context(), wallet.Token, ports.Page{Limit: q.Limit, Offset: q.Offset})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewHistoryResponse(wallet.Token.String(), entries))
}

// Reconcile handles GET /api/v1/wallets/:token/reconcile.
func (h *WalletHandler) Reconcile(c *gin.Context) {
	wallet, ok := h.ownedWallet(c, c.Param("token"))
	if !ok {
		return
	}

	result, err := h.ledger.Reconcile(c.Request.Context(), wallet.Token)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, result)
}

// ownedWallet resolves a wallet reference and checks the caller owns it.
// It writes the error response itself and reports false on any failure.
func (h *WalletHandler) ownedWallet(c *gin.Context, rawToken string) (*domain.Wallet, bool) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrInvalidToken())
		return nil, false
	}

	wallet, err := h.wallets.GetByToken(c.Request.Context(), rawToken)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	if !wallet.IsOwnedBy(claims.UserID) {
		response.Error(c, apperror.ErrNotWalletOwner())
		return nil, false
	}
	return wallet, true
}
