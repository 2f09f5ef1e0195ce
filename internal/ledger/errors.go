// Package ledger implements the lançamento ledger: the store of monthly
// indicator submissions, the rules about who may write where, and the
// aggregation that rolls per-unit values into one figure per indicator.
package ledger

import "errors"

// ErrMissingField is returned when a required field is absent or out of
// range (e.g. mes outside 1–12). The wrapped message names the field.
var ErrMissingField = errors.New("campo obrigatório ausente")

// ErrAccessDenied is returned when the user has no access to the unit a
// lançamento belongs to, or is not allowed to modify someone else's record.
var ErrAccessDenied = errors.New("acesso negado à unidade")

// ErrNotFound is returned when the referenced indicator, unit or lançamento
// does not exist or is inactive.
var ErrNotFound = errors.New("registro não encontrado")

// ErrDuplicatePeriod is returned when a lançamento already exists for the
// same (indicador, unidade, ano, mes) tuple. This is an expected,
// user-correctable condition and must stay distinguishable from storage
// faults so the HTTP layer can answer 409 instead of 500.
var ErrDuplicatePeriod = errors.New("já existe lançamento para este período")
