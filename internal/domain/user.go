// Package domain provides defenitions of all entities.
package domain

import "errors"

var (
	// ErrUserAlreadyExists indicates that the user with the given username already exists.
	ErrUserAlreadyExists = errors.New("user_already_exists")
	// ErrUserNotFound indicates that the user is not found.
	ErrUserNotFound = errors.New("user_does_not_exist")
	// ErrInvalidArguments indicates that the request arguments failed validation.
	ErrInvalidArguments = errors.New("wrong_arguments")
)

// User holds user data.
type User struct {
	Username string `json:"username"`
}
