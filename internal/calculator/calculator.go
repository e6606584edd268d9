// Package calculator computes the nominal incentive of an intervention
// for each scheme. Every computation is a closed function of intervention
// and tables: eligible expense = min(expense, unit ceiling × quantity),
// coefficient from the band tables, product, optional absolute ceiling.
// Each step lands in the trace for auditability.
//
// A calculator never rejects out-of-range numeric input: that is the
// validator's job. Invoked directly with invalid input it returns a zero
// amount and a trace note.
package calculator

import (
	"fmt"
	"math"

	"contotermico/internal/models"
	"contotermico/internal/refdata"
)

// centesimi rounds to the euro cent.
func centesimi(v float64) float64 {
	return math.Round(v*100) / 100
}

// Calcola returns the intervention's incentive for the given scheme.
// The only possible error is a missing reference datum.
func Calcola(iv models.Intervento, tab *refdata.Tabelle, schema models.Schema) (models.Incentivo, error) {
	switch schema {
	case models.ContoTermico:
		return calcolaContoTermico(iv, tab)
	case models.DetrazioneFiscale:
		return calcolaDetrazione(iv, tab)
	}
	return models.Incentivo{}, &refdata.ErroreDatiMancanti{Tabella: "schemi", Chiave: string(schema)}
}

// SchemiSupportati lists the schemes the intervention can access.
// The detrazione fiscale is unavailable to the pubblica amministrazione
// and to interventions missing from its table.
func SchemiSupportati(iv models.Intervento, tab *refdata.Tabelle) []models.Schema {
	schemi := []models.Schema{models.ContoTermico}
	if iv.Soggetto == models.PubblicaAmministrazione {
		return schemi
	}
	if _, ok := tab.RegoleDetrazionePer(iv.Codice); ok {
		schemi = append(schemi, models.DetrazioneFiscale)
	}
	return schemi
}

// Annualita returns the number of conto termico annual installments for
// the intervention: 5 for the envelope and plants above threshold, 2 for
// the rest.
func Annualita(iv models.Intervento) int {
	switch iv.Codice {
	case models.Isolamento, models.Serramenti, models.Schermature,
		models.Illuminazione, models.BuildingAutomation:
		return 5
	case models.PompaDiCalore:
		if iv.PompaCalore != nil && iv.PompaCalore.PotenzaKW > 35 {
			return 5
		}
		return 2
	case models.Biomassa:
		if iv.Biomassa != nil && iv.Biomassa.PotenzaKW > 35 {
			return 5
		}
		return 2
	case models.Ibrido:
		if iv.Ibrido != nil && iv.Ibrido.PotenzaKW > 35 {
			return 5
		}
		return 2
	case models.SolareTermico:
		if iv.SolareTermico != nil && iv.SolareTermico.SuperficieLordaMQ > 50 {
			return 5
		}
		return 2
	default:
		return 2
	}
}

// nonCalcolabile builds the zero result with a trace note.
func nonCalcolabile(schema models.Schema, nota string) models.Incentivo {
	return models.Incentivo{
		Schema:  schema,
		Traccia: []string{"calcolo non eseguito: " + nota},
	}
}

func calcolaDetrazione(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	regole, ok := tab.RegoleDetrazionePer(iv.Codice)
	if !ok {
		return nonCalcolabile(models.DetrazioneFiscale, "intervento non ammesso alla detrazione fiscale"), nil
	}
	if iv.Soggetto == models.PubblicaAmministrazione {
		return nonCalcolabile(models.DetrazioneFiscale, "la pubblica amministrazione non accede alla detrazione"), nil
	}
	if iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.DetrazioneFiscale, "spesa dichiarata non positiva"), nil
	}

	inc := models.Incentivo{Schema: models.DetrazioneFiscale}
	spesaMassima := regole.Massimo / regole.Percentuale
	inc.SpesaAmmissibile = math.Min(iv.SpesaDichiarata, spesaMassima)
	inc.Traccia = append(inc.Traccia,
		fmt.Sprintf("percentuale detrazione %.0f%%", regole.Percentuale*100),
		fmt.Sprintf("spesa ammissibile %.2f € (dichiarata %.2f €, massima %.2f €)", inc.SpesaAmmissibile, iv.SpesaDichiarata, spesaMassima))
	inc.ImportoNominale = centesimi(regole.Percentuale * inc.SpesaAmmissibile)
	if iv.SpesaDichiarata > spesaMassima {
		inc.MassimaleApplicato = fmt.Sprintf("detrazione massima %.0f €", regole.Massimo)
	}
	inc.Traccia = append(inc.Traccia, fmt.Sprintf("detrazione nominale %.2f €", inc.ImportoNominale))
	return inc, nil
}
