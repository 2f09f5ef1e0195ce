package model

import "time"

// Unit represents a hospital unit (ala, setor) in the `unidades`
// table. Units are shared reference data: users belong to exactly one
// and lançamentos are always recorded against one. A unit is never
// deleted while referenced; it is retired by clearing the Ativo flag.
//
// Fields:
//  ID           – primary key identifier.
//  Nome         – unique display name (e.g. "UTI Geral").
//  Codigo       – unique short code (e.g. "UTI_GERAL").
//  Ativo        – whether the unit currently accepts submissions.
//  CriadoEm     – timestamp of creation.
//  AtualizadoEm – timestamp of last update.
type Unit struct {
    ID           uint64    // unidades.id
    Nome         string    // unidades.nome
    Codigo       string    // unidades.codigo
    Ativo        bool      // unidades.ativo
    CriadoEm     time.Time // unidades.criado_em
    AtualizadoEm time.Time // unidades.atualizado_em
}
