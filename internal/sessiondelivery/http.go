// Package sessiondelivery manages delivery layer of sessions and account profile.
package sessiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/pr-poehali-dev/yugan-bank-registration/internal/domain"
	"github.com/pr-poehali-dev/yugan-bank-registration/internal/middleware"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/errorspkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/tokenpkg"
	"github.com/pr-poehali-dev/yugan-bank-registration/pkg/web"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	Login(ctx context.Context, phone, name string) (domain.Account, string, time.Time, error)
	Account(ctx context.Context, phone string) (domain.Account, error)
	Logout()
	DeleteAccount(ctx context.Context, phone string) error
	UpdateProfile(ctx context.Context, phone string, arg domain.UpdateProfileParams) (domain.Account, error)
	UpgradePremium(ctx context.Context, phone string) (domain.Account, error)
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(s Service) Handler {
	return Handler{service: s}
}

type data struct {
	Account domain.Account `json:"account"`
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

type loginRequest struct {
	Phone string `json:"phone" binding:"required"`
	Name  string `json:"name" binding:"required"`
}

// Login handles http request to log in, creating the account on first
// sight of the phone.
func (h *Handler) Login(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req loginRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	account, accessToken, expiresAt, err := h.service.Login(ctx, req.Phone, req.Name)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	res := web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: expiresAt.Format(time.RFC3339),
		Data:                 data{account},
	}

	gctx.JSON(http.StatusOK, res)
}

// Get handles http request to read the current account snapshot.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	account, err := h.service.Account(ctx, authPhone(gctx))
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

type updateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

// Update handles http request to change profile fields. A phone change
// moves the stored record to the new key.
func (h *Handler) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req updateRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindError(gctx, err)
		return
	}

	arg := domain.UpdateProfileParams{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}

	account, err := h.service.UpdateProfile(ctx, authPhone(gctx), arg)
	if err != nil {
		switch err {
		case domain.ErrAccountNotFound:
			gctx.JSON(http.StatusNotFound, web.Error(err))
			return
		case domain.ErrPhoneAlreadyRegistered:
			gctx.JSON(http.StatusConflict, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

// Delete handles http request to remove the account permanently.
func (h *Handler) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	if err := h.service.DeleteAccount(ctx, authPhone(gctx)); err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		return
	}

	gctx.JSON(http.StatusOK, web.Response{})
}

// Premium handles http request to upgrade the account to premium.
func (h *Handler) Premium(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	account, err := h.service.UpgradePremium(ctx, authPhone(gctx))
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

// Logout clears the server side snapshot; the client drops its token.
func (h *Handler) Logout(gctx *gin.Context) {
	h.service.Logout()
	gctx.JSON(http.StatusOK, web.Response{})
}
