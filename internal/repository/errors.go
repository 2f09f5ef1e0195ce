// Package repository implements the MySQL persistence layer. The sentinel
// values below let the domain services distinguish expected storage
// conditions (a missing row, a violated unique key) from infrastructure
// faults, which are returned as-is and treated as opaque.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, e.g. a
// second lançamento for the same (indicador, unidade, ano, mes) tuple or a
// unit with an already-used code.
var ErrDuplicate = errors.New("duplicate")

// ErrEmailExists is returned when a user insert collides on the email
// unique key.
var ErrEmailExists = errors.New("email already exists")
