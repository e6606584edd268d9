// Package scheduler turns a nominal incentive into the scheme's
// disbursement plan: single installment below the threshold, constant
// annuities, or (in prenotazione) an advance, an optional work-progress
// installment and a final balance.
//
// Installment amounts are rounded to the cent; the rounding residual is
// absorbed by the last installment, so the plan always sums to the
// nominal amount.
package scheduler

import (
	"fmt"
	"math"

	"contotermico/internal/models"
)

// Modalita selects the conto termico disbursement mode.
type Modalita string

const (
	ModalitaOrdinaria    Modalita = "ordinaria"
	ModalitaPrenotazione Modalita = "prenotazione"
)

// SogliaRataUnicaDefault is the amount below which the conto termico pays
// in a single installment.
const SogliaRataUnicaDefault = 5000.0

// AnniDetrazioneDefault is the recovery period of the detrazione fiscale.
const AnniDetrazioneDefault = 10

// Regole parametrizes the plan for an intervention.
type Regole struct {
	Annualita        int     // conto termico annual installments: 2 or 5
	SogliaRataUnica  float64 // 0 = default
	RataUnicaForzata bool    // PA and qualifying non-economic terzo settore
	QuotaIntermedia  float64 // fraction of the residual paid at work progress (prenotazione only)
	AnniDetrazione   int     // 0 = default
}

// ErroreInvariante reports a plan whose sum differs from the nominal
// amount beyond tolerance: an internal computation defect, never to be
// swallowed.
type ErroreInvariante struct {
	Schema   models.Schema
	Atteso   float64
	Ottenuto float64
}

func (e *ErroreInvariante) Error() string {
	return fmt.Sprintf("scheduler: somma rate %s %.2f € diversa dall'importo nominale %.2f €", e.Schema, e.Ottenuto, e.Atteso)
}

const tolleranza = 0.01

func centesimi(v float64) float64 {
	return math.Round(v*100) / 100
}

// Pianifica builds the disbursement plan of the amount for the scheme.
func Pianifica(schema models.Schema, importo float64, regole Regole, modalita Modalita) (models.PianoErogazione, error) {
	piano := models.PianoErogazione{Schema: schema}
	if importo <= 0 {
		return piano, nil
	}

	switch schema {
	case models.DetrazioneFiscale:
		anni := regole.AnniDetrazione
		if anni <= 0 {
			anni = AnniDetrazioneDefault
		}
		piano.Rate = annualitaCostanti(importo, anni)
	case models.ContoTermico:
		if modalita == ModalitaPrenotazione {
			piano.Rate = ratePrenotazione(importo, regole)
		} else {
			piano.Rate = rateOrdinarie(importo, regole)
		}
	default:
		return piano, fmt.Errorf("scheduler: schema %q sconosciuto", schema)
	}

	if err := verificaSomma(&piano, importo); err != nil {
		return models.PianoErogazione{}, err
	}
	return piano, nil
}

func rateOrdinarie(importo float64, regole Regole) []models.Rata {
	soglia := regole.SogliaRataUnica
	if soglia <= 0 {
		soglia = SogliaRataUnicaDefault
	}
	if regole.RataUnicaForzata || importo <= soglia {
		return []models.Rata{{
			Etichetta: "rata unica",
			Importo:   centesimi(importo),
			Evento:    models.Evento{Tipo: models.EventoConclusione},
		}}
	}
	n := regole.Annualita
	if n <= 0 {
		n = 2
	}
	return annualitaCostanti(importo, n)
}

// annualitaCostanti splits the amount into n equal installments; the
// rounding residual goes into the last one.
func annualitaCostanti(importo float64, n int) []models.Rata {
	base := centesimi(importo / float64(n))
	rate := make([]models.Rata, 0, n)
	erogato := 0.0
	for anno := 1; anno <= n; anno++ {
		quota := base
		if anno == n {
			quota = centesimi(importo - erogato)
		}
		rate = append(rate, models.Rata{
			Etichetta: fmt.Sprintf("annualità %d di %d", anno, n),
			Importo:   quota,
			Evento:    models.Evento{Tipo: models.EventoAnnualita, Anno: anno},
		})
		erogato += quota
	}
	return rate
}

// ratePrenotazione: advance at ammissione (50% on 2 annuities, 40% on 5),
// optional work-progress installment, balance at conclusione.
func ratePrenotazione(importo float64, regole Regole) []models.Rata {
	quotaAcconto := 0.50
	if regole.Annualita == 5 {
		quotaAcconto = 0.40
	}
	acconto := centesimi(importo * quotaAcconto)
	rate := []models.Rata{{
		Etichetta: fmt.Sprintf("acconto %.0f%%", quotaAcconto*100),
		Importo:   acconto,
		Evento:    models.Evento{Tipo: models.EventoAmmissione},
	}}
	residuo := importo - acconto
	intermedia := 0.0
	if regole.QuotaIntermedia > 0 {
		intermedia = centesimi(residuo * regole.QuotaIntermedia)
		rate = append(rate, models.Rata{
			Etichetta: "rata intermedia",
			Importo:   intermedia,
			Evento:    models.Evento{Tipo: models.EventoStatoAvanzamento},
		})
	}
	rate = append(rate, models.Rata{
		Etichetta: "saldo",
		Importo:   centesimi(importo - acconto - intermedia),
		Evento:    models.Evento{Tipo: models.EventoConclusione},
	})
	return rate
}

func verificaSomma(piano *models.PianoErogazione, importo float64) error {
	somma := piano.Totale()
	if math.Abs(somma-centesimi(importo)) > tolleranza {
		return &ErroreInvariante{Schema: piano.Schema, Atteso: importo, Ottenuto: somma}
	}
	return nil
}
