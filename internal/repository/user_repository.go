package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "id,nome,email,senha_hash,role,unidade_id,ativo,ultimo_login,criado_em,atualizado_em"

// Create inserts a user and fills in the generated ID. The email must
// already be normalized and the password hashed by the caller.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO usuarios (nome, email, senha_hash, role, unidade_id) VALUES (?,?,?,?,?)",
		u.Nome, u.Email, u.PasswordHash, u.Role, u.UnidadeID)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE id=? LIMIT 1", u.ID).
		Scan(scanUser(u)...)
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE email=? LIMIT 1", email).
		Scan(scanUser(&u)...)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM usuarios WHERE id=? LIMIT 1", id).
		Scan(scanUser(&u)...)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// TouchLastLogin records a successful authentication.
func (r *UserRepo) TouchLastLogin(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE usuarios SET ultimo_login=? WHERE id=?", at.UTC(), id)
	return err
}

// ListAll returns every user ordered by name. Used by the admin listing.
func (r *UserRepo) ListAll(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userCols+" FROM usuarios ORDER BY nome")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		if err := rows.Scan(scanUser(&u)...); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// scanUser returns scan destinations matching userCols order.
func scanUser(u *model.User) []any {
	return []any{&u.ID, &u.Nome, &u.Email, &u.PasswordHash, &u.Role,
		&u.UnidadeID, &u.Ativo, &u.UltimoLogin, &u.CriadoEm, &u.AtualizadoEm}
}

// isDuplicateKey reports whether err is a MySQL 1062 unique-key violation.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
