// Package transactiondelivery manages delivery layer of transaction history.
package transactiondelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	List(ctx context.Context, accountID string) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) *Handler {
	return &Handler{service: ts}
}

type listRequest struct {
	AccountID string `form:"accountId" binding:"required"`
}

type listResponse struct {
	Transactions []domain.Transaction `json:"transactions"`
}

// List handles http request to list the transactions of an account.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req listRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	transactions, err := h.service.List(ctx, req.AccountID)
	if err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(web.StatusCode(err), web.Error(err))

		return
	}

	gctx.JSON(http.StatusOK, listResponse{Transactions: transactions})
}
