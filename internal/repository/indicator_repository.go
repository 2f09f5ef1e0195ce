package repository

import (
	"context"
	"database/sql"

	"github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

type IndicatorRepo struct{ DB *sql.DB }

func NewIndicatorRepo(db *sql.DB) *IndicatorRepo { return &IndicatorRepo{DB: db} }

const indicatorCols = "id,nome,COALESCE(descricao,''),tipo,unidade_medida,meta_mensal," +
	"label_numerador,label_denominador,ativo,criado_em,atualizado_em"

// Create inserts an indicator and fills in the generated ID and timestamps.
func (r *IndicatorRepo) Create(ctx context.Context, in *model.Indicator) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO indicadores
		 (nome, descricao, tipo, unidade_medida, meta_mensal, label_numerador, label_denominador)
		 VALUES (?,?,?,?,?,?,?)`,
		in.Nome, in.Descricao, in.Tipo, in.UnidadeMedida, in.MetaMensal,
		in.LabelNumerador, in.LabelDenominador)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	in.ID = uint64(id)
	return r.DB.QueryRowContext(ctx,
		"SELECT "+indicatorCols+" FROM indicadores WHERE id=? LIMIT 1", in.ID).
		Scan(scanIndicator(in)...)
}

// GetByID fetches an indicator by id.
func (r *IndicatorRepo) GetByID(ctx context.Context, id uint64) (model.Indicator, error) {
	var in model.Indicator
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+indicatorCols+" FROM indicadores WHERE id=? LIMIT 1", id).
		Scan(scanIndicator(&in)...)
	if err == sql.ErrNoRows {
		return in, ErrNotFound
	}
	return in, err
}

// ListActive returns the active catalog ordered by name. Aggregation and
// the catalog endpoint both read through here.
func (r *IndicatorRepo) ListActive(ctx context.Context) ([]model.Indicator, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+indicatorCols+" FROM indicadores WHERE ativo=1 ORDER BY nome")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Indicator, 0)
	for rows.Next() {
		var in model.Indicator
		if err := rows.Scan(scanIndicator(&in)...); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func scanIndicator(in *model.Indicator) []any {
	return []any{&in.ID, &in.Nome, &in.Descricao, &in.Tipo, &in.UnidadeMedida,
		&in.MetaMensal, &in.LabelNumerador, &in.LabelDenominador,
		&in.Ativo, &in.CriadoEm, &in.AtualizadoEm}
}
