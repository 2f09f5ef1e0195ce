// Package identity implements authentication and the role/unit access
// model. It decides which hospital units a user may read or write; the
// ledger consults it before every mutation.
package identity

import "errors"

// ErrInvalidCredentials covers every login failure the caller is allowed to
// see: unknown email, wrong password or a deactivated account. They are
// deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("credenciais inválidas")

// ErrInsufficientPermission is returned when a user's role sits below the
// minimum required for an operation.
var ErrInsufficientPermission = errors.New("permissão insuficiente")
