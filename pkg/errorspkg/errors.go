// Package errorspkg provides common app errors.
package errorspkg

import "errors"

// ErrInternal indicates internal server error. Its message follows the
// external snake_case error naming of the API.
var ErrInternal = errors.New("internal_error")
