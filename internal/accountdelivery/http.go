// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, holderName string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) *Handler {
	return &Handler{service: as}
}

type createRequest struct {
	HolderName string `json:"holderName" binding:"required,notblank,max=100"`
}

type createResponse struct {
	Identifier string `json:"identifier"`
	Message    string `json:"message"`
}

// Create handles http request to create account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	account, err := h.service.Create(ctx, req.HolderName)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(web.StatusCode(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, createResponse{
		Identifier: account.Identifier,
		Message:    "Account created for " + account.HolderName,
	})
}

type listResponse struct {
	Accounts []domain.Account `json:"accounts"`
}

// List handles http request to list all accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	accounts, err := h.service.List(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Send()
		gctx.JSON(web.StatusCode(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, listResponse{Accounts: accounts})
}
