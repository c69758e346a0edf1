package domain

import "errors"

var (
	// ErrSenderNotFound indicates that the sending user is not found.
	ErrSenderNotFound = errors.New("sender_does_not_exist")
	// ErrReceiverNotFound indicates that the receiving user is not found.
	ErrReceiverNotFound = errors.New("receiver_does_not_exist")
	// ErrTooManyRequestsSender indicates that the sender in-flight limit refused the withdrawal leg.
	ErrTooManyRequestsSender = errors.New("too_many_requests_to_sender")
	// ErrTooManyRequestsReceiver indicates that the receiver in-flight limit refused the deposit leg.
	ErrTooManyRequestsReceiver = errors.New("too_many_requests_to_receiver")
)

// TransferResult is the result of a completed transfer.
type TransferResult struct {
	FromBalance string `json:"from_balance"`
	ToBalance   string `json:"to_balance"`
}
