package ledger

import (
    "fmt"
    "sort"

    "github.com/FBFE/gestao-indicadores-hospitalares/internal/model"
)

// Status values of the traffic-light classification attached to each view.
const (
    StatusGreen = "green" // result meets the indicator's target
    StatusRed   = "red"   // result misses the target
    StatusGray  = "gray"  // no comparable target, or no computable result
)

// NotApplicable is the sentinel result when the summed denominator is zero.
const NotApplicable = "N/A"

// View is the shape lançamentos are served in: either one raw row enriched
// with catalog metadata, or one synthetic row per indicator when the caller
// asked for all units. Aggregated rows have no ID and no unit reference.
type View struct {
    ID               *uint64  `json:"id,omitempty"`
    IndicadorID      uint64   `json:"indicador_id"`
    IndicadorNome    string   `json:"indicador_nome"`
    UnidadeID        *uint64  `json:"unidade_id,omitempty"`
    UnidadeNome      string   `json:"unidade_nome"`
    Ano              int      `json:"ano"`
    Mes              *int     `json:"mes,omitempty"`
    ValorNumerador   float64  `json:"valor_numerador"`
    ValorDenominador float64  `json:"valor_denominador"`
    Resultado        string   `json:"resultado"`
    Meta             *float64 `json:"meta"`
    Status           string   `json:"status"`
    Descricao        string   `json:"descricao"`
    LabelNumerador   string   `json:"label_numerador"`
    LabelDenominador string   `json:"label_denominador"`
    Observacoes      *string  `json:"observacoes,omitempty"`
}

// aggregateUnitLabel marks synthetic all-units rows.
const aggregateUnitLabel = "Todas as Unidades"

// Aggregate rolls period-filtered rows into one view per indicator. It sums
// numerator and denominator components independently and divides once at
// the end; averaging the per-unit percentages instead would weight a
// low-volume unit the same as a high-volume one. The function is pure and
// deterministic: output is sorted by indicator name (then ID), so shuffled
// input yields identical output.
func Aggregate(rows []model.Lancamento, catalog map[uint64]model.Indicator, ano int, mes *int) []View {
    type sums struct {
        num, den float64
    }
    byIndicator := make(map[uint64]*sums)
    for _, l := range rows {
        s, ok := byIndicator[l.IndicadorID]
        if !ok {
            s = &sums{}
            byIndicator[l.IndicadorID] = s
        }
        s.num += l.ValorNumerador
        s.den += l.ValorDenominador
    }

    out := make([]View, 0, len(byIndicator))
    for id, s := range byIndicator {
        ind := catalog[id] // zero value when the indicator left the catalog
        resultado := computeResultado(s.num, s.den)
        out = append(out, View{
            IndicadorID:      id,
            IndicadorNome:    ind.Nome,
            UnidadeNome:      aggregateUnitLabel,
            Ano:              ano,
            Mes:              mes,
            ValorNumerador:   s.num,
            ValorDenominador: s.den,
            Resultado:        resultado,
            Meta:             ind.MetaMensal,
            Status:           classify(ind.MetaMensal, s.num, s.den),
            Descricao:        ind.Descricao,
            LabelNumerador:   ind.LabelNumerador,
            LabelDenominador: ind.LabelDenominador,
        })
    }
    sort.Slice(out, func(i, j int) bool {
        if out[i].IndicadorNome != out[j].IndicadorNome {
            return out[i].IndicadorNome < out[j].IndicadorNome
        }
        return out[i].IndicadorID < out[j].IndicadorID
    })
    return out
}

// rowView builds the per-unit view of one raw lançamento, enriched with the
// indicator's catalog metadata.
func rowView(l model.Lancamento, ind model.Indicator, unidadeNome string) View {
    id := l.ID
    unidadeID := l.UnidadeID
    mes := l.Mes
    return View{
        ID:               &id,
        IndicadorID:      l.IndicadorID,
        IndicadorNome:    ind.Nome,
        UnidadeID:        &unidadeID,
        UnidadeNome:      unidadeNome,
        Ano:              l.Ano,
        Mes:              &mes,
        ValorNumerador:   l.ValorNumerador,
        ValorDenominador: l.ValorDenominador,
        Resultado:        computeResultado(l.ValorNumerador, l.ValorDenominador),
        Meta:             ind.MetaMensal,
        Status:           classify(ind.MetaMensal, l.ValorNumerador, l.ValorDenominador),
        Descricao:        ind.Descricao,
        LabelNumerador:   ind.LabelNumerador,
        LabelDenominador: ind.LabelDenominador,
        Observacoes:      l.Observacoes,
    }
}

// computeResultado renders (num/den)*100 with two decimal places, or the
// N/A sentinel when the denominator is zero. Division by zero can never
// escape this function.
func computeResultado(num, den float64) string {
    if den == 0 {
        return NotApplicable
    }
    return fmt.Sprintf("%.2f", num/den*100)
}

// classify derives the traffic-light status strictly from comparing the
// computed result with the indicator's monthly target. Only the zero-target
// rule is well defined: a target of exactly 0 is met iff the result is 0.
// The comparison uses the rounded value served to the client, so a result
// that displays as "0.00" is green. Any indicator without a comparable
// target is indeterminate (gray), never green by default.
func classify(meta *float64, num, den float64) string {
    if den == 0 || meta == nil {
        return StatusGray
    }
    if *meta == 0 {
        if computeResultado(num, den) == "0.00" {
            return StatusGreen
        }
        return StatusRed
    }
    // Direction of comparison for non-zero targets depends on the
    // indicator type and is not defined yet.
    return StatusGray
}
