package model

import "time"

// Lancamento is one monthly submission for one indicator in one unit,
// stored in the `lancamentos` table. The tuple (indicador, unidade,
// ano, mes) is unique: at most one lançamento exists per indicator per
// unit per month, enforced by the uq_lancamento_periodo key. Rows are
// never deleted; corrections are updates that refresh AtualizadoEm.
//
// Fields:
//  ID               – primary key identifier.
//  IndicadorID      – indicator the value belongs to.
//  UnidadeID        – unit the value was measured in.
//  UsuarioID        – user who submitted the value (creator).
//  Ano              – calendar year of the period.
//  Mes              – calendar month of the period (1–12).
//  ValorNumerador   – raw numerator component.
//  ValorDenominador – raw denominator component.
//  Observacoes      – free-text notes (nullable).
//  CriadoEm         – creation timestamp (audit, immutable).
//  AtualizadoEm     – last update timestamp.
type Lancamento struct {
    ID               uint64    // lancamentos.id
    IndicadorID      uint64    // lancamentos.indicador_id
    UnidadeID        uint64    // lancamentos.unidade_id
    UsuarioID        uint64    // lancamentos.usuario_id
    Ano              int       // lancamentos.ano
    Mes              int       // lancamentos.mes
    ValorNumerador   float64   // lancamentos.valor_numerador
    ValorDenominador float64   // lancamentos.valor_denominador
    Observacoes      *string   // lancamentos.observacoes (nullable)
    CriadoEm         time.Time // lancamentos.criado_em
    AtualizadoEm     time.Time // lancamentos.atualizado_em
}
