// Package queue defines message payloads exchanged over the message broker
// and the background consumer that turns them into an audit trail.
package queue

// LancamentoRecordedEvent is published whenever a lançamento is created or
// updated. It carries enough context for downstream consumers to audit or
// notify without querying the primary database.
type LancamentoRecordedEvent struct {
    LancamentoID  uint64  `json:"lancamento_id"`
    Acao          string  `json:"acao"` // "created" or "updated"
    IndicadorID   uint64  `json:"indicador_id"`
    IndicadorNome string  `json:"indicador_nome"`
    UnidadeID     uint64  `json:"unidade_id"`
    UnidadeNome   string  `json:"unidade_nome"`
    UsuarioID     uint64  `json:"usuario_id"`
    UsuarioEmail  string  `json:"usuario_email"`
    Ano           int     `json:"ano"`
    Mes           int     `json:"mes"`
    Numerador     float64 `json:"valor_numerador"`
    Denominador   float64 `json:"valor_denominador"`
    RecordedAt    string  `json:"recorded_at"`
}

// Actions stamped on LancamentoRecordedEvent.
const (
    ActionCreated = "created"
    ActionUpdated = "updated"
)
