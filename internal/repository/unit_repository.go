package repository

import (
	"context"
	"database/sql"

	"github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

type UnitRepo struct{ DB *sql.DB }

func NewUnitRepo(db *sql.DB) *UnitRepo { return &UnitRepo{DB: db} }

const unitCols = "id,nome,codigo,ativo,criado_em,atualizado_em"

// Create inserts a unit and fills in the generated ID and timestamps.
func (r *UnitRepo) Create(ctx context.Context, u *model.Unit) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO unidades (nome, codigo) VALUES (?,?)",
		u.Nome, u.Codigo)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT "+unitCols+" FROM unidades WHERE id=? LIMIT 1", u.ID).
		Scan(&u.ID, &u.Nome, &u.Codigo, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm)
}

// GetByID fetches a unit by id.
func (r *UnitRepo) GetByID(ctx context.Context, id uint64) (model.Unit, error) {
	var u model.Unit
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+unitCols+" FROM unidades WHERE id=? LIMIT 1", id).
		Scan(&u.ID, &u.Nome, &u.Codigo, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

// ListActive returns every active unit ordered by name.
func (r *UnitRepo) ListActive(ctx context.Context) ([]model.Unit, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+unitCols+" FROM unidades WHERE ativo=1 ORDER BY nome")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Unit, 0)
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(&u.ID, &u.Nome, &u.Codigo, &u.Ativo, &u.CriadoEm, &u.AtualizadoEm); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
