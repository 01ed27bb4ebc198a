// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// IdempotencyKeyHeader carries the optional client key that makes a transfer
// safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, fromID, toID, amount, idempotencyKey string) (domain.TransferResult, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(ts Service) *Handler {
	return &Handler{
		service: ts,
	}
}

// The amount may be sent either as a JSON number or as a numeric string.
type request struct {
	FromID string      `json:"fromId" binding:"required"`
	ToID   string      `json:"toId" binding:"required"`
	Amount json.Number `json:"amount" binding:"required"`
}

type response struct {
	Message       string    `json:"message"`
	TransactionID uuid.UUID `json:"transactionId"`
	Replayed      bool      `json:"replayed,omitempty"`
}

// Create handles http request to transfer money between two accounts.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req request
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.BindError(err))

		return
	}

	key := gctx.GetHeader(IdempotencyKeyHeader)

	result, err := h.service.Transfer(ctx, req.FromID, req.ToID, req.Amount.String(), key)
	if err != nil {
		gctx.JSON(web.StatusCode(err), web.Error(err))
		return
	}

	gctx.JSON(http.StatusOK, response{
		Message:       "Transfer completed",
		TransactionID: result.Transaction.ID,
		Replayed:      result.Replayed,
	})
}
