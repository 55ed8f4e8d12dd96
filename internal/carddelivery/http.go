// Package carddelivery manages delivery layer of cards.
package carddelivery

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
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/tokenpkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/web"
)

// Service provides service layer interface needed by card delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package carddelivery
type Service interface {
	Issue(ctx context.Context, phone string, cardType domain.CardType, system domain.PaymentSystem, variant domain.CardVariant) (domain.Account, domain.Card, error)
	Rename(ctx context.Context, phone, cardID, name string) (domain.Account, error)
	SetLimit(ctx context.Context, phone, cardID string, limit *int64) (domain.Account, error)
	ToggleBlock(ctx context.Context, phone, cardID string) (domain.Account, error)
	Delete(ctx context.Context, phone, cardID string) (domain.Account, error)
}

// Handler facilitates card delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns card handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type data struct {
	Account domain.Account `json:"account"`
	Card    *domain.Card   `json:"card,omitempty"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

func bindError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx)

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
}

func authPhone(gctx *gin.Context) string {
	payload := gctx.MustGet(middleware.AuthorizationPayloadKey).(*tokenpkg.Payload)
	return payload.Phone
}

func handleError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrAccountNotFound, domain.ErrCardNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrInvalidSelection:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type issueRequest struct {
	Type          string `json:"type" binding:"required"`
	PaymentSystem string `json:"payment_system" binding:"required"`
	Variant       string `json:"variant" binding:"required"`
}

// Issue handles http request to issue a new card from the completed
// selection wizard.
func (h *Handler) Issue(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req issueRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, card, err := h.service.Issue(
		ctx,
		authPhone(gctx),
		domain.CardType(req.Type),
		domain.PaymentSystem(req.PaymentSystem),
		domain.CardVariant(req.Variant),
	)
	if err != nil {
		handleError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{Account: account, Card: &card}})
}

type cardURI struct {
	ID string `uri:"id" binding:"required"`
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

// Rename handles http request to set the card label.
func (h *Handler) Rename(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri cardURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req renameRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.Rename(ctx, authPhone(gctx), uri.ID, req.Name)
	if err != nil {
		handleError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{Account: account}})
}

type limitRequest struct {
	// Limit null or absent clears the cap.
	Limit *int64 `json:"limit" binding:"omitempty,min=0"`
}

// SetLimit handles http request to set or clear the spending cap.
func (h *Handler) SetLimit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri cardURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	var req limitRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.SetLimit(ctx, authPhone(gctx), uri.ID, req.Limit)
	if err != nil {
		handleError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{Account: account}})
}

// ToggleBlock handles http request to flip the card blocked flag.
func (h *Handler) ToggleBlock(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri cardURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.ToggleBlock(ctx, authPhone(gctx), uri.ID)
	if err != nil {
		handleError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{Account: account}})
}

// Delete handles http request to remove the card.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri cardURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.Delete(ctx, authPhone(gctx), uri.ID)
	if err != nil {
		handleError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{Account: account}})
}
