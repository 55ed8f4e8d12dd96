// Package familydelivery manages delivery layer of family linking.
package familydelivery

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

// Service provides service layer interface needed by family delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package familydelivery
type Service interface {
	Create(ctx context.Context, phone string) (domain.Account, error)
	Join(ctx context.Context, phone, code string) (domain.Account, error)
	View(ctx context.Context, phone string) ([]domain.Account, error)
}

// Handler facilitates family delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns family handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type data struct {
	Account domain.Account `json:"account"`
}

type viewData struct {
	Accounts []domain.Account `json:"accounts"`
}

type response struct {
	Data any `json:"data,omitempty"`
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

// Create handles http request to create a family, generating its code.
// Calling it on an account that already has a code is a no-op.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	account, err := h.service.Create(ctx, authPhone(gctx))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type joinRequest struct {
	Code string `json:"code" binding:"required,len=6"`
}

// Join handles http request to join a family by code.
func (h *Handler) Join(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req joinRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, err := h.service.Join(ctx, authPhone(gctx), req.Code)
	if err != nil {
		switch err {
		case domain.ErrFamilyCodeNotFound, domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// View handles http request to list all accounts of the caller's family.
func (h *Handler) View(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	accounts, err := h.service.View(ctx, authPhone(gctx))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: viewData{Accounts: accounts}})
}
