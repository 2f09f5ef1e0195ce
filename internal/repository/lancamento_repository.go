package repository

import (
	"context"
	"database/sql"

	"github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

// LancamentoRepo provides the ledger's storage operations. Every write is
// transactional; the uq_lancamento_periodo unique key guarantees at most one
// row per (indicador, unidade, ano, mes) even under concurrent inserts, so
// the repository only needs to translate the 1062 violation into
// ErrDuplicate rather than lock anything itself.
type LancamentoRepo struct{ DB *sql.DB }

func NewLancamentoRepo(db *sql.DB) *LancamentoRepo { return &LancamentoRepo{DB: db} }

const lancamentoCols = "id,indicador_id,unidade_id,usuario_id,ano,mes," +
	"valor_numerador,valor_denominador,observacoes,criado_em,atualizado_em"

// ListFilter narrows List results. Ano is always required; Mes and
// UnidadeID are optional.
type ListFilter struct {
	Ano       int
	Mes       *int
	UnidadeID *uint64
}

// Create inserts a single lançamento and populates the generated ID and
// timestamps on the given record.
func (r *LancamentoRepo) Create(ctx context.Context, l *model.Lancamento) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := r.createTx(ctx, tx, l); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// CreateBatch inserts several lançamentos atomically: either every row
// commits or none does. A duplicate period anywhere in the batch rolls the
// whole batch back.
func (r *LancamentoRepo) CreateBatch(ctx context.Context, ls []*model.Lancamento) error {
	if len(ls) == 0 {
		return nil
	}
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, l := range ls {
		if err := r.createTx(ctx, tx, l); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// createTx does the actual insert and reads the row back so the caller sees
// server-assigned ID and timestamps.
func (r *LancamentoRepo) createTx(ctx context.Context, tx *sql.Tx, l *model.Lancamento) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO lancamentos
		 (indicador_id, unidade_id, usuario_id, ano, mes, valor_numerador, valor_denominador, observacoes)
		 VALUES (?,?,?,?,?,?,?,?)`,
		l.IndicadorID, l.UnidadeID, l.UsuarioID, l.Ano, l.Mes,
		l.ValorNumerador, l.ValorDenominador, l.Observacoes)
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
	l.ID = uint64(id)
	return tx.QueryRowContext(ctx,
		"SELECT "+lancamentoCols+" FROM lancamentos WHERE id=? LIMIT 1", l.ID).
		Scan(scanLancamento(l)...)
}

// GetByID fetches a lançamento by id.
func (r *LancamentoRepo) GetByID(ctx context.Context, id uint64) (model.Lancamento, error) {
	var l model.Lancamento
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+lancamentoCols+" FROM lancamentos WHERE id=? LIMIT 1", id).
		Scan(scanLancamento(&l)...)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	return l, err
}

// UpdateValues rewrites the mutable columns of a lançamento (values and
// notes). Identifying columns are deliberately not part of the statement:
// indicator, unit and period are immutable after creation. The refreshed
// row is returned.
func (r *LancamentoRepo) UpdateValues(ctx context.Context, id uint64, num, den float64, obs *string) (model.Lancamento, error) {
	var l model.Lancamento
	_, err := r.DB.ExecContext(ctx,
		`UPDATE lancamentos
		 SET valor_numerador=?, valor_denominador=?, observacoes=?, atualizado_em=CURRENT_TIMESTAMP
		 WHERE id=?`,
		num, den, obs, id)
	if err != nil {
		return l, err
	}
	// RowsAffected is 0 both for a missing row and for a no-change update,
	// so the read-back below is what actually reports ErrNotFound.
	return r.GetByID(ctx, id)
}

// List returns lançamentos for a period, optionally narrowed to one unit.
// Ordering is fixed so identical filters always yield identical output.
func (r *LancamentoRepo) List(ctx context.Context, f ListFilter) ([]model.Lancamento, error) {
	q := "SELECT " + lancamentoCols + " FROM lancamentos WHERE ano=?"
	args := []any{f.Ano}
	if f.Mes != nil {
		q += " AND mes=?"
		args = append(args, *f.Mes)
	}
	if f.UnidadeID != nil {
		q += " AND unidade_id=?"
		args = append(args, *f.UnidadeID)
	}
	q += " ORDER BY indicador_id, unidade_id, mes"
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Lancamento, 0)
	for rows.Next() {
		var l model.Lancamento
		if err := rows.Scan(scanLancamento(&l)...); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLancamento(l *model.Lancamento) []any {
	return []any{&l.ID, &l.IndicadorID, &l.UnidadeID, &l.UsuarioID, &l.Ano, &l.Mes,
		&l.ValorNumerador, &l.ValorDenominador, &l.Observacoes, &l.CriadoEm, &l.AtualizadoEm}
}
