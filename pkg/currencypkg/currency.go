// Package currencypkg provides common currency related functionality for apps.
package currencypkg

// Constants for frequently used currencies. Currency codes are free-form,
// case-sensitive strings; these exist for convenience only.
const (
	USD = "USD"
	EUR = "EUR"
	RMB = "RMB"
)
