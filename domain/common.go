package domain

import (
	"errors"
)

const (
	RoleUser = "user"
)

var (
	MessageFailedBodyRequest  = "failed to process request body"
	MessageFailedGetToken     = "failed to get token"
	MessageFailedTokenInvalid = "failed to token invalid"

	ErrParseUUID          = errors.New("failed to parse UUID")
	ErrTokenNotFound      = errors.New("failed to token not found")
	ErrTokenInvalid       = errors.New("token is invalid")
	ErrTokenExpired       = errors.New("token is expired")
	ErrUserNotAllowed     = errors.New("you do not have permission to perform this action")
	ErrSomethingWentWrong = errors.New("something went wrong, please try again")
)
