// Package bankdelivery manages delivery layer of the bank API.
package bankdelivery

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/mem-bank/internal/domain"
	"github.com/go-petr/mem-bank/pkg/errorspkg"
	"github.com/go-petr/mem-bank/pkg/web"
)

// Service provides service layer interface needed by bank delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package bankdelivery
type Service interface {
	CreateUser(ctx context.Context, username string) error
	Balance(ctx context.Context, username, currency string) (string, error)
	Deposit(ctx context.Context, username, amount, currency string) (string, error)
	Withdraw(ctx context.Context, username, amount, currency string) (string, error)
	Transfer(ctx context.Context, from, to, amount, currency string) (domain.TransferResult, error)
}

// Handler facilitates bank delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns bank handler.
func NewHandler(bs Service) *Handler {
	return &Handler{service: bs}
}

// bindingError renders a binding failure as wrong_arguments.
func bindingError(gctx *gin.Context, err error) {
	l := zerolog.Ctx(gctx.Request.Context())
	l.Info().Err(err).Send()

	res := web.Error(domain.ErrInvalidArguments)

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		res.Message = web.GetErrorMsg(ve)
	}

	gctx.JSON(http.StatusBadRequest, res)
}

// serviceError maps a service error onto an HTTP status and response body.
func serviceError(gctx *gin.Context, err error) {
	switch err {
	case domain.ErrInvalidArguments,
		domain.ErrInsufficientBalance:
		gctx.JSON(http.StatusBadRequest, web.Error(err))
	case domain.ErrUserNotFound,
		domain.ErrSenderNotFound,
		domain.ErrReceiverNotFound:
		gctx.JSON(http.StatusNotFound, web.Error(err))
	case domain.ErrUserAlreadyExists:
		gctx.JSON(http.StatusConflict, web.Error(err))
	case domain.ErrTooManyRequests,
		domain.ErrTooManyRequestsSender,
		domain.ErrTooManyRequestsReceiver:
		gctx.JSON(http.StatusTooManyRequests, web.Error(err))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

type userURI struct {
	Username string `uri:"username" binding:"required"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
}

type userData struct {
	User domain.User `json:"user"`
}

// CreateUser handles http request to create a user.
func (h *Handler) CreateUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req createUserRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	if err := h.service.CreateUser(ctx, req.Username); err != nil {
		serviceError(gctx, err)
		return
	}

	res := web.Response{
		Data: userData{User: domain.User{Username: req.Username}},
	}

	gctx.JSON(http.StatusOK, res)
}

type balanceRequest struct {
	Currency string `form:"currency" binding:"required"`
}

type balanceData struct {
	// Balance is emitted as a JSON number with exactly two fractional digits.
	Balance json.Number `json:"balance"`
}

// Balance handles http request to get a currency balance.
func (h *Handler) Balance(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri userURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req balanceRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	balance, err := h.service.Balance(ctx, uri.Username, req.Currency)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := web.Response{
		Data: balanceData{Balance: json.Number(balance)},
	}

	gctx.JSON(http.StatusOK, res)
}

// jsonAmount is a JSON number kept at full precision. Unlike json.Number it
// does not accept a JSON string, so a quoted amount fails binding.
type jsonAmount json.Number

// UnmarshalJSON implements json.Unmarshaler.
func (a *jsonAmount) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return errors.New("amount must be a JSON number")
	}

	return json.Unmarshal(b, (*json.Number)(a))
}

// String returns the amount literal.
func (a jsonAmount) String() string { return string(a) }

// chargeRequest carries the amount as jsonAmount so integer and decimal
// JSON numbers are accepted at full precision while strings and other
// types fail binding.
type chargeRequest struct {
	Amount   jsonAmount `json:"amount" binding:"required"`
	Currency string     `json:"currency" binding:"required"`
}

// Deposit handles http request to deposit money.
func (h *Handler) Deposit(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri userURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req chargeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	balance, err := h.service.Deposit(ctx, uri.Username, req.Amount.String(), req.Currency)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := web.Response{
		Data: balanceData{Balance: json.Number(balance)},
	}

	gctx.JSON(http.StatusOK, res)
}

// Withdraw handles http request to withdraw money.
func (h *Handler) Withdraw(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri userURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		bindingError(gctx, err)
		return
	}

	var req chargeRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	balance, err := h.service.Withdraw(ctx, uri.Username, req.Amount.String(), req.Currency)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := web.Response{
		Data: balanceData{Balance: json.Number(balance)},
	}

	gctx.JSON(http.StatusOK, res)
}

type transferRequest struct {
	FromUsername string     `json:"from_username" binding:"required"`
	ToUsername   string     `json:"to_username" binding:"required"`
	Amount       jsonAmount `json:"amount" binding:"required"`
	Currency     string     `json:"currency" binding:"required"`
}

type transferData struct {
	FromBalance json.Number `json:"from_balance"`
	ToBalance   json.Number `json:"to_balance"`
}

// Transfer handles http request to send money between users.
func (h *Handler) Transfer(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req transferRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		bindingError(gctx, err)
		return
	}

	result, err := h.service.Transfer(ctx, req.FromUsername, req.ToUsername, req.Amount.String(), req.Currency)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	res := web.Response{
		Data: transferData{
			FromBalance: json.Number(result.FromBalance),
			ToBalance:   json.Number(result.ToBalance),
		},
	}

	gctx.JSON(http.StatusOK, res)
}
