package model

import "time"

// Indicator describes one tracked hospital indicator in the
// `indicadores` table. Indicators are read-mostly reference data
// consulted when lançamentos are listed and aggregated.
//
// Fields:
//  ID               – primary key identifier.
//  Nome             – indicator name (e.g. "Taxa de Infecção").
//  Descricao        – what the indicator measures.
//  Tipo             – category (qualidade, seguranca, ...).
//  UnidadeMedida    – unit of measure for display.
//  MetaMensal       – monthly target; nil when no target is defined,
//                     in which case the status of a result is
//                     indeterminate.
//  LabelNumerador   – display label for the numerator component.
//  LabelDenominador – display label for the denominator component.
//  Ativo            – inactive indicators reject new lançamentos.
//  CriadoEm         – timestamp of creation.
//  AtualizadoEm     – timestamp of last update.
type Indicator struct {
    ID               uint64    // indicadores.id
    Nome             string    // indicadores.nome
    Descricao        string    // indicadores.descricao
    Tipo             string    // indicadores.tipo
    UnidadeMedida    string    // indicadores.unidade_medida
    MetaMensal       *float64  // indicadores.meta_mensal (nullable)
    LabelNumerador   string    // indicadores.label_numerador
    LabelDenominador string    // indicadores.label_denominador
    Ativo            bool      // indicadores.ativo
    CriadoEm         time.Time // indicadores.criado_em
    AtualizadoEm     time.Time // indicadores.atualizado_em
}
