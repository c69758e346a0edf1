// Package accountstore holds the per-user currency balances.
package accountstore

import (
	"sync"

	"github.com/go-petr/mem-bank/internal/domain"
	"github.com/go-petr/mem-bank/pkg/moneypkg"
)

// Store maps currency codes to exact balances for a single user. Currencies
// are compared bytewise, so "USD" and "usd" are distinct. Operations are
// serialized, so each read-modify-write is atomic even when driven from
// concurrently admitted operations.
type Store struct {
	mu       sync.Mutex
	balances map[string]moneypkg.Money
}

// New returns an empty store.
func New() *Store {
	return &Store{
		balances: make(map[string]moneypkg.Money),
	}
}

// Balance returns the current balance of the given currency. A currency
// that was never deposited reads as zero.
func (s *Store) Balance(currency string) moneypkg.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.balances[currency]
}

// Deposit adds amount to the currency balance and returns the new balance.
func (s *Store) Deposit(currency string, amount moneypkg.Money) moneypkg.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	balance := s.balances[currency].Add(amount)
	s.balances[currency] = balance

	return balance
}

// Withdraw subtracts amount from the currency balance and returns the new
// balance. When the balance is lower than amount it returns
// domain.ErrInsufficientBalance and leaves the balance unchanged.
func (s *Store) Withdraw(currency string, amount moneypkg.Money) (moneypkg.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.balances[currency]
	if !current.GTE(amount) {
		return moneypkg.Money{}, domain.ErrInsufficientBalance
	}

	balance := current.Sub(amount)
	s.balances[currency] = balance

	return balance, nil
}
