// Package transferdelivery manages delivery layer of transfers.
package transferdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/middleware"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/errorspkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/moneypkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/tokenpkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/web"
)

// Service provides service layer interface needed by transfer delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transferdelivery
type Service interface {
	Transfer(ctx context.Context, phone string, arg domain.CreateTransferParams) (domain.Account, domain.Transaction, error)
}

// Handler facilitates transfer delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transfer handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type transactionData struct {
	domain.Transaction
	AmountDisplay string `json:"amount_display"`
}

type data struct {
	Account     domain.Account  `json:"account"`
	Transaction transactionData `json:"transaction"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	FromCardID string `json:"from_card_id" binding:"required"`
	Type       string `json:"type" binding:"required,transfertype"`
	Target     string `json:"target" binding:"required"`
	Amount     string `json:"amount" binding:"required"`
}

// Create handles http request to execute a transfer.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		var (
			ve     validator.ValidationErrors
			errMsg string
		)

		if errors.As(err, &ve) {
			field := ve[0]
			errMsg = field.Field() + web.GetErrorMsg(field)
		} else {
			errMsg = err.Error()
		}

		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})

		return
	}

	amount, err := moneypkg.ParseAmount(req.Amount)
	if err != nil {
		l.Info().Str("amount", req.Amount).Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidTransfer))

		return
	}

	payload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)

	arg := domain.CreateTransferParams{
		FromCardID: req.FromCardID,
		Type:       domain.TransferType(req.Type),
		Target:     req.Target,
		Amount:     amount,
	}

	account, transaction, err := h.service.Transfer(ctx, payload.Phone, arg)
	if err != nil {
		switch err {
		case domain.ErrEmptyTransferFields,
			domain.ErrNonPositiveAmount,
			domain.ErrInsufficientBalance,
			domain.ErrCardBlocked:
			// One user-facing message; the reasons stay in the logs.
			gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidTransfer))
			return
		case domain.ErrAccountNotFound, domain.ErrCardNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	res := response{
		Data: data{
			Account: account,
			Transaction: transactionData{
				Transaction:   transaction,
				AmountDisplay: moneypkg.Format(transaction.Amount),
			},
		},
	}

	gctx.JSON(http.StatusOK, res)
}
