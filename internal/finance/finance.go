// Package finance compares the incentive schemes by discounting their
// disbursement plans. Deadlines are projected on whole years: ammissione
// is year 0, conclusione and stato avanzamento year 1, annuities their
// own ordinal.
package finance

import (
	"fmt"
	"math"

	"contotermico/internal/models"
)

// AnnoEvento maps a deadline onto its discounting year.
func AnnoEvento(e models.Evento) int {
	switch e.Tipo {
	case models.EventoAmmissione:
		return 0
	case models.EventoStatoAvanzamento, models.EventoConclusione:
		return 1
	default:
		return e.Anno
	}
}

// ValoreAttuale discounts a disbursement plan at the given rate.
func ValoreAttuale(piano models.PianoErogazione, tasso float64) float64 {
	va := 0.0
	for _, rata := range piano.Rate {
		anno := AnnoEvento(rata.Evento)
		va += rata.Importo / math.Pow(1+tasso, float64(anno))
	}
	return va
}

// Confronta discounts the project plans and ranks the schemes by present
// value. On an exact tie the conto termico wins: a declared convention,
// not an artifact of iteration order.
func Confronta(p *models.Progetto, tasso float64) (models.Confronto, error) {
	if p == nil || len(p.Piani) == 0 {
		return models.Confronto{}, fmt.Errorf("finance: progetto senza piani di erogazione")
	}
	if tasso <= -1 {
		return models.Confronto{}, fmt.Errorf("finance: tasso di sconto %.4f non valido", tasso)
	}

	esito := models.Confronto{ValoreAttuale: make(map[models.Schema]float64)}
	for schema, piano := range p.Piani {
		esito.ValoreAttuale[schema] = math.Round(ValoreAttuale(piano, tasso)*100) / 100
	}

	vaCT, haCT := esito.ValoreAttuale[models.ContoTermico]
	vaDF, haDF := esito.ValoreAttuale[models.DetrazioneFiscale]
	switch {
	case haCT && haDF:
		if vaDF > vaCT {
			esito.SchemaPreferito = models.DetrazioneFiscale
		} else {
			esito.SchemaPreferito = models.ContoTermico
		}
		esito.Vantaggio = math.Abs(vaCT - vaDF)
	case haCT:
		esito.SchemaPreferito = models.ContoTermico
		esito.Vantaggio = vaCT
	case haDF:
		esito.SchemaPreferito = models.DetrazioneFiscale
		esito.Vantaggio = vaDF
	}
	return esito, nil
}
