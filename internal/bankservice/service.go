// Package bankservice manages business logic layer of the bank.
package bankservice

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-petr/mem-bank/internal/domain"
	"github.com/go-petr/mem-bank/internal/registry"
	"github.com/go-petr/mem-bank/pkg/metricspkg"
	"github.com/go-petr/mem-bank/pkg/moneypkg"
)

// compensationRetryDelay paces re-credit attempts while the sender's
// gatekeeper is saturated. Slots free up as in-flight operations finish.
const compensationRetryDelay = time.Millisecond

// Service facilitates bank service layer logic.
type Service struct {
	registry *registry.Registry
}

// New returns bank service struct to manage bank bussines logic.
func New(r *registry.Registry) *Service {
	return &Service{registry: r}
}

// observe records the operation outcome and passes err through.
func observe(op string, err error) error {
	switch err {
	case nil:
		metricspkg.IncOperation(op, "ok")
	case domain.ErrTooManyRequests, domain.ErrTooManyRequestsSender, domain.ErrTooManyRequestsReceiver:
		metricspkg.IncAdmissionRejection(op)
		metricspkg.IncOperation(op, err.Error())
	default:
		metricspkg.IncOperation(op, err.Error())
	}

	return err
}

// parseAmount converts a request amount into Money. Anything that is not a
// strictly positive number fails validation.
func parseAmount(amount string) (moneypkg.Money, error) {
	m, err := moneypkg.FromString(amount)
	if err != nil {
		return moneypkg.Money{}, domain.ErrInvalidArguments
	}

	if !m.IsPositive() {
		return moneypkg.Money{}, domain.ErrInvalidArguments
	}

	return m, nil
}

// CreateUser registers username with an empty account.
func (s *Service) CreateUser(ctx context.Context, username string) error {
	l := zerolog.Ctx(ctx)

	if username == "" {
		return observe("create_user", domain.ErrInvalidArguments)
	}

	if err := s.registry.Create(username); err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return observe("create_user", err)
	}

	return observe("create_user", nil)
}

// Balance returns the displayed balance of the given currency.
func (s *Service) Balance(ctx context.Context, username, currency string) (string, error) {
	l := zerolog.Ctx(ctx)

	if username == "" || currency == "" {
		return "", observe("get_balance", domain.ErrInvalidArguments)
	}

	entry, err := s.registry.Resolve(username)
	if err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return "", observe("get_balance", err)
	}

	balance, err := entry.Gate.Execute(ctx, func(ctx context.Context) (moneypkg.Money, error) {
		return entry.Store.Balance(currency), nil
	})
	if err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return "", observe("get_balance", err)
	}

	return balance.Display(), observe("get_balance", nil)
}

// Deposit adds amount to the user's currency balance and returns the new
// displayed balance.
func (s *Service) Deposit(ctx context.Context, username, amount, currency string) (string, error) {
	l := zerolog.Ctx(ctx)

	if username == "" || currency == "" {
		return "", observe("deposit", domain.ErrInvalidArguments)
	}

	m, err := parseAmount(amount)
	if err != nil {
		l.Info().Str("amount", amount).Msg("invalid deposit amount")
		return "", observe("deposit", err)
	}

	entry, err := s.registry.Resolve(username)
	if err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return "", observe("deposit", err)
	}

	balance, err := entry.Gate.Execute(ctx, func(ctx context.Context) (moneypkg.Money, error) {
		return entry.Store.Deposit(currency, m), nil
	})
	if err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return "", observe("deposit", err)
	}

	return balance.Display(), observe("deposit", nil)
}

// Withdraw subtracts amount from the user's currency balance and returns
// the new displayed balance.
func (s *Service) Withdraw(ctx context.Context, username, amount, currency string) (string, error) {
	l := zerolog.Ctx(ctx)

	if username == "" || currency == "" {
		return "", observe("withdraw", domain.ErrInvalidArguments)
	}

	m, err := parseAmount(amount)
	if err != nil {
		l.Info().Str("amount", amount).Msg("invalid withdrawal amount")
		return "", observe("withdraw", err)
	}

	entry, err := s.registry.Resolve(username)
	if err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return "", observe("withdraw", err)
	}

	balance, err := entry.Gate.Execute(ctx, func(ctx context.Context) (moneypkg.Money, error) {
		return entry.Store.Withdraw(currency, m)
	})
	if err != nil {
		l.Info().Err(err).Str("username", username).Send()
		return "", observe("withdraw", err)
	}

	return balance.Display(), observe("withdraw", nil)
}

// Transfer moves amount from one user to another as a withdrawal leg
// followed by a deposit leg. The two legs are not atomic: concurrently
// admitted operations may observe the sender's reduced balance between
// them. A refused deposit leg is compensated by re-crediting the sender.
func (s *Service) Transfer(ctx context.Context, from, to, amount, currency string) (domain.TransferResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.TransferResult

	if from == "" || to == "" || currency == "" || from == to {
		return result, observe("send", domain.ErrInvalidArguments)
	}

	m, err := parseAmount(amount)
	if err != nil {
		l.Info().Str("amount", amount).Msg("invalid transfer amount")
		return result, observe("send", err)
	}

	sender, err := s.registry.Resolve(from)
	if err != nil {
		l.Info().Err(err).Str("username", from).Send()
		return result, observe("send", domain.ErrSenderNotFound)
	}

	receiver, err := s.registry.Resolve(to)
	if err != nil {
		l.Info().Err(err).Str("username", to).Send()
		return result, observe("send", domain.ErrReceiverNotFound)
	}

	fromBalance, err := sender.Gate.Execute(ctx, func(ctx context.Context) (moneypkg.Money, error) {
		return sender.Store.Withdraw(currency, m)
	})
	if err != nil {
		l.Info().Err(err).Str("username", from).Send()

		if err == domain.ErrTooManyRequests {
			return result, observe("send", domain.ErrTooManyRequestsSender)
		}

		return result, observe("send", err)
	}

	toBalance, err := receiver.Gate.Execute(ctx, func(ctx context.Context) (moneypkg.Money, error) {
		return receiver.Store.Deposit(currency, m), nil
	})
	if err != nil {
		l.Info().Err(err).Str("username", to).Msg("deposit leg refused, compensating sender")
		s.compensate(ctx, sender, currency, m)

		if err == domain.ErrTooManyRequests {
			return result, observe("send", domain.ErrTooManyRequestsReceiver)
		}

		return result, observe("send", err)
	}

	result.FromBalance = fromBalance.Display()
	result.ToBalance = toBalance.Display()

	return result, observe("send", nil)
}

// compensate re-credits a withdrawn amount after a failed deposit leg. The
// sender's gatekeeper may be saturated at that instant; the re-credit is
// retried until a slot frees so the sender is never left debited.
func (s *Service) compensate(ctx context.Context, sender registry.Entry, currency string, m moneypkg.Money) {
	for {
		_, err := sender.Gate.Execute(ctx, func(ctx context.Context) (moneypkg.Money, error) {
			return sender.Store.Deposit(currency, m), nil
		})
		if err != domain.ErrTooManyRequests {
			return
		}

		time.Sleep(compensationRetryDelay)
	}
}
