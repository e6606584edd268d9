// Package validator checks the regulatory eligibility of an intervention.
// Each type has an ordered battery of independent checks: all of them run
// even after the first failure, so the report is complete and the user
// sees everything wrong in a single pass.
package validator

import (
	"fmt"

	"contotermico/internal/models"
	"contotermico/internal/refdata"
)

// Each warning subtracts a fixed penalty from the starting score.
const (
	punteggioIniziale = 100
	penalitaAvviso    = 10
)

// rapporto accumulates check outcomes without short-circuiting them.
type rapporto struct {
	errori       []string
	avvisi       []string
	suggerimenti []string
}

func (r *rapporto) errore(format string, a ...any) {
	r.errori = append(r.errori, fmt.Sprintf(format, a...))
}

func (r *rapporto) avviso(format string, a ...any) {
	r.avvisi = append(r.avvisi, fmt.Sprintf(format, a...))
}

func (r *rapporto) suggerisci(format string, a ...any) {
	r.suggerimenti = append(r.suggerimenti, fmt.Sprintf(format, a...))
}

// chiudi consolidates the report into a Verifica. Any blocking error
// zeroes the score, whatever penalties have accumulated.
func (r *rapporto) chiudi() models.Verifica {
	punteggio := punteggioIniziale - penalitaAvviso*len(r.avvisi)
	if punteggio < 0 {
		punteggio = 0
	}
	if len(r.errori) > 0 {
		punteggio = 0
	}
	return models.Verifica{
		Idoneo:       len(r.errori) == 0,
		Punteggio:    punteggio,
		Errori:       r.errori,
		Avvisi:       r.avvisi,
		Suggerimenti: r.suggerimenti,
	}
}

// controllo is a single step of the validation battery.
type controllo func(iv models.Intervento, tab *refdata.Tabelle, r *rapporto)

// Valida runs the check battery on the intervention using the embedded
// tables. Deterministic: same input, same report.
func Valida(iv models.Intervento) models.Verifica {
	return ValidaCon(iv, refdata.Default())
}

// ValidaCon runs the validation with an explicit table provider.
func ValidaCon(iv models.Intervento, tab *refdata.Tabelle) models.Verifica {
	r := &rapporto{}
	for _, c := range batteria(iv.Codice) {
		c(iv, tab, r)
	}
	return r.chiudi()
}

// batteria returns the checks for the type, preceded by the ones common
// to every intervention.
func batteria(codice models.CodiceIntervento) []controllo {
	comuni := []controllo{controllaSpesa, controllaZona}
	switch codice {
	case models.PompaDiCalore:
		return append(comuni, controllaPompaCalore)
	case models.Isolamento:
		return append(comuni, controllaIsolamento)
	case models.Serramenti:
		return append(comuni, controllaSerramenti)
	case models.Biomassa:
		return append(comuni, controllaBiomassa)
	case models.SolareTermico:
		return append(comuni, controllaSolareTermico)
	case models.Fotovoltaico:
		return append(comuni, controllaFotovoltaico)
	case models.ColonnineRicarica:
		return append(comuni, controllaColonnine)
	case models.ScaldacquaPdC:
		return append(comuni, controllaScaldacqua)
	case models.Illuminazione:
		return append(comuni, controllaIlluminazione)
	case models.Schermature:
		return append(comuni, controllaSchermature)
	case models.BuildingAutomation:
		return append(comuni, controllaAutomation)
	case models.Ibrido:
		return append(comuni, controllaIbrido)
	}
	return []controllo{func(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
		r.errore("codice intervento %q non riconosciuto", iv.Codice)
	}}
}

func controllaSpesa(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	if iv.SpesaDichiarata <= 0 {
		r.errore("spesa dichiarata assente o non positiva")
	}
}

func controllaZona(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	if _, err := tab.OreUtilizzo(iv.Zona); err != nil {
		r.errore("zona climatica %q non valida", iv.Zona)
	}
}
