package config

import "errors"

// ErrAuthCodeInvalid is returned when a destructive operation is attempted
// with a missing or mismatched authorization code.
var ErrAuthCodeInvalid = errors.New("authorization code is invalid")

// CheckAuthCode validates a user-supplied authorization code against the
// configured gate. When the gate is not required, any code passes. The
// check happens before any cache mutation, so a rejected refresh leaves
// server-side state untouched.
func (a AuthConfig) CheckAuthCode(code string) error {
	if !a.Required {
		return nil
	}
	if code == "" || code != a.Code {
		return ErrAuthCodeInvalid
	}
	return nil
}
