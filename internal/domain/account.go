package domain

import "errors"

var (
	// ErrInsufficientBalance indicates that the account balance is lower than
	// the requested withdrawal amount.
	ErrInsufficientBalance = errors.New("not_enough_money")
	// ErrTooManyRequests indicates that the per-user in-flight operation limit
	// is reached and the request was shed.
	ErrTooManyRequests = errors.New("too_many_requests_to_user")
)

// Balance holds the externally visible balance of a single currency.
type Balance struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}
