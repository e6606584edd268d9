// Package terziario applies the extra constraints set for economic
// subjects (imprese, terzo settore economico) working on non-residential
// buildings: gas heat pumps are excluded, and minimum primary energy
// reduction thresholds must be certified by ante and post operam APE.
// Outcomes are data, not errors: for the caller an unsatisfied constraint
// is equivalent to a blocking validation error.
package terziario

import (
	"contotermico/internal/models"
)

// Non-renewable primary energy reduction thresholds.
const (
	riduzioneBase       = 0.10
	riduzioneRafforzata = 0.20
)

// fasciaBase: envelope interventions, 10% threshold rising to 20% when
// combined with a Titolo II intervention.
var fasciaBase = map[models.CodiceIntervento]bool{
	models.Isolamento:  true,
	models.Serramenti:  true,
	models.Schermature: true,
}

// fasciaRafforzata: plant efficiency interventions, always at 20%.
var fasciaRafforzata = map[models.CodiceIntervento]bool{
	models.Illuminazione:      true,
	models.BuildingAutomation: true,
}

// Applicabile reports whether the terziario constraints cover the intervention.
func Applicabile(iv models.Intervento) bool {
	return iv.Soggetto.SoggettoEconomico() && iv.Edificio == models.NonResidenziale
}

// RiduzioneRichiesta returns the minimum primary energy reduction
// threshold for the code, taking the project's other interventions into
// account.
func RiduzioneRichiesta(codice models.CodiceIntervento, combinati map[models.CodiceIntervento]bool) float64 {
	switch {
	case fasciaRafforzata[codice]:
		return riduzioneRafforzata
	case fasciaBase[codice]:
		for altro := range combinati {
			if altro != codice && models.TitoloII[altro] {
				return riduzioneRafforzata
			}
		}
		return riduzioneBase
	default:
		return 0
	}
}

// VerificaVincoli evaluates the terziario constraints for an intervention.
// riduzione is the certified primary energy reduction (fraction), nil when
// unknown; haAPE reports the availability of ante and post operam
// certificates.
func VerificaVincoli(iv models.Intervento, combinati map[models.CodiceIntervento]bool, riduzione *float64, haAPE bool) models.EsitoVincoli {
	esito := models.EsitoVincoli{
		Soddisfatto:     true,
		PompaGasAmmessa: true,
	}
	if !Applicabile(iv) {
		return esito
	}

	// Categorical rule: no gas heat pumps for economic subjects on
	// non-residential buildings, regardless of everything else.
	if iv.Codice == models.PompaDiCalore && iv.PompaCalore != nil && iv.PompaCalore.Alimentazione == models.AlimentazioneGas {
		esito.PompaGasAmmessa = false
		esito.Soddisfatto = false
		return esito
	}

	richiesta := RiduzioneRichiesta(iv.Codice, combinati)
	esito.RiduzioneRichiesta = richiesta
	if richiesta == 0 {
		return esito
	}

	esito.RichiedeAPE = true
	if !haAPE {
		esito.Soddisfatto = false
		return esito
	}
	if riduzione == nil {
		esito.Soddisfatto = false
		return esito
	}
	esito.RiduzioneNota = true
	esito.RiduzioneEffettiva = *riduzione
	// A value exactly at the threshold satisfies the constraint.
	esito.Soddisfatto = *riduzione >= richiesta
	return esito
}
