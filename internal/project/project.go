// Package project composes and aggregates multi-intervention projects: it
// runs the validation → constraints → calculation pipeline in the order
// imposed by the trainante/trainato dependencies, applies the cross caps
// and the project premiums, and builds the per-scheme disbursement plans.
package project

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"contotermico/internal/calculator"
	"contotermico/internal/logger"
	"contotermico/internal/models"
	"contotermico/internal/refdata"
	"contotermico/internal/scheduler"
	"contotermico/internal/terziario"
	"contotermico/internal/validator"
)

// Project premiums: additive, each with its own requirement, computed on
// the base and never compounded with each other.
const (
	quotaBonusMultiIntervento = 0.05
	quotaBonusRiduzione       = 0.15
	sogliaRiduzioneBonus      = 0.40

	motivoMultiIntervento = "combinazione di interventi Titolo II"
	motivoRiduzione       = "riduzione energia primaria ≥ 40%"
)

// Opzioni parametrizes the composition of a project.
type Opzioni struct {
	// Primary energy reduction certified by ante and post operam APE
	// (fraction). Nil when unavailable.
	RiduzioneEnergia *float64
	HaAPE            bool

	Modalita        scheduler.Modalita
	QuotaIntermedia float64
	SogliaRataUnica float64

	// MassimaleProgetto caps the per-scheme total. It only affects the
	// premiums: the base is never reduced.
	MassimaleProgetto float64
}

// ErroreInvariante reports an inconsistent aggregation: an internal
// defect, not a problem with the user's data.
type ErroreInvariante struct {
	Motivo string
}

func (e *ErroreInvariante) Error() string {
	return "project: invariante violato: " + e.Motivo
}

// soggettiRataUnica always receive the single installment on direct payment.
var soggettiRataUnica = map[models.TipoSoggetto]bool{
	models.PubblicaAmministrazione:  true,
	models.TerzoSettoreNonEconomico: true,
}

// soggettiPrenotazione may access the prenotazione disbursement.
var soggettiPrenotazione = map[models.TipoSoggetto]bool{
	models.PubblicaAmministrazione:  true,
	models.TerzoSettoreNonEconomico: true,
	models.Condominio:               true,
}

// Componi runs the whole pipeline on a set of interventions of the same
// building and returns the aggregated project, complete with the
// per-scheme disbursement plans.
func Componi(interventi []models.Intervento, tab *refdata.Tabelle, opz Opzioni) (*models.Progetto, error) {
	if len(interventi) == 0 {
		return nil, fmt.Errorf("project: nessun intervento da comporre")
	}

	combinati := make(map[models.CodiceIntervento]bool, len(interventi))
	for _, iv := range interventi {
		combinati[iv.Codice] = true
	}

	voci := make([]models.VoceProgetto, 0, len(interventi))
	perCodice := make(map[models.CodiceIntervento]*models.VoceProgetto)

	// Topological pass: trainanti before trainati, whatever the
	// insertion order.
	for _, iv := range ordinaPerDipendenze(interventi) {
		voce, err := componiVoce(iv, tab, combinati, perCodice, opz)
		if err != nil {
			return nil, err
		}
		voci = append(voci, voce)
		if _, visto := perCodice[iv.Codice]; !visto {
			perCodice[iv.Codice] = &voci[len(voci)-1]
		}
		logger.Info("intervento composto", map[string]interface{}{
			"codice": string(iv.Codice),
			"idoneo": voce.Verifica.Idoneo,
		})
	}

	progetto, err := Aggrega(voci, opz)
	if err != nil {
		return nil, err
	}
	if err := pianificaProgetto(progetto, opz); err != nil {
		return nil, err
	}
	return progetto, nil
}

// ordinaPerDipendenze puts interventions without a trainante first,
// otherwise preserving the input order.
func ordinaPerDipendenze(interventi []models.Intervento) []models.Intervento {
	ordinati := make([]models.Intervento, 0, len(interventi))
	for _, iv := range interventi {
		if _, dipende := models.DipendenzeIntervento[iv.Codice]; !dipende {
			ordinati = append(ordinati, iv)
		}
	}
	for _, iv := range interventi {
		if _, dipende := models.DipendenzeIntervento[iv.Codice]; dipende {
			ordinati = append(ordinati, iv)
		}
	}
	return ordinati
}

func componiVoce(iv models.Intervento, tab *refdata.Tabelle, combinati map[models.CodiceIntervento]bool, perCodice map[models.CodiceIntervento]*models.VoceProgetto, opz Opzioni) (models.VoceProgetto, error) {
	voce := models.VoceProgetto{Intervento: iv}
	voce.Verifica = validator.ValidaCon(iv, tab)

	if terziario.Applicabile(iv) {
		esito := terziario.VerificaVincoli(iv, combinati, opz.RiduzioneEnergia, opz.HaAPE)
		voce.Vincoli = &esito
		if !esito.Soddisfatto {
			// An unsatisfied sector constraint is equivalent to
			// a blocking validation error.
			voce.Verifica.Errori = append(voce.Verifica.Errori, motivoVincolo(esito))
			voce.Verifica.Idoneo = false
			voce.Verifica.Punteggio = 0
		}
	}

	// Structural dependency: without an eligible trainante the trainato
	// is inadmissible, not merely capped.
	var trainante *models.VoceProgetto
	if codiceTrainante, dipende := models.DipendenzeIntervento[iv.Codice]; dipende {
		trainante = perCodice[codiceTrainante]
		if trainante == nil || !trainante.Verifica.Idoneo {
			voce.Verifica.Errori = append(voce.Verifica.Errori,
				fmt.Sprintf("intervento trainante %s assente o non idoneo", codiceTrainante))
			voce.Verifica.Idoneo = false
			voce.Verifica.Punteggio = 0
		}
	}

	if !voce.Verifica.Idoneo {
		return voce, nil
	}

	voce.Incentivi = make(map[models.Schema]models.Incentivo)
	for _, schema := range calculator.SchemiSupportati(iv, tab) {
		inc, err := calculator.Calcola(iv, tab, schema)
		if err != nil {
			return voce, err
		}
		if trainante != nil {
			inc = applicaTettoTrainante(inc, trainante, schema)
		}
		voce.Incentivi[schema] = inc
	}
	return voce, nil
}

// applicaTettoTrainante caps the trainato's incentive at the trainante's
// value for the same scheme.
func applicaTettoTrainante(inc models.Incentivo, trainante *models.VoceProgetto, schema models.Schema) models.Incentivo {
	anchor, ok := trainante.Incentivi[schema]
	if !ok {
		return inc
	}
	if inc.ImportoNominale > anchor.ImportoNominale {
		inc.ImportoNominale = anchor.ImportoNominale
		inc.MassimaleApplicato = fmt.Sprintf("incentivo del trainante %s", trainante.Intervento.Codice)
		inc.Traccia = append(inc.Traccia,
			fmt.Sprintf("limitato a %.2f € dall'incentivo del trainante", anchor.ImportoNominale))
	}
	return inc
}

func motivoVincolo(esito models.EsitoVincoli) string {
	switch {
	case !esito.PompaGasAmmessa:
		return "pompa di calore a gas non ammessa per soggetti economici su edifici non residenziali"
	case esito.RichiedeAPE && !esito.RiduzioneNota:
		return fmt.Sprintf("riduzione di energia primaria richiesta %.0f%% non attestata: APE ante e post operam obbligatori", esito.RiduzioneRichiesta*100)
	default:
		return fmt.Sprintf("riduzione di energia primaria %.1f%% sotto la soglia richiesta %.0f%%", esito.RiduzioneEffettiva*100, esito.RiduzioneRichiesta*100)
	}
}

// Aggrega consolidates the entries into a project: per-scheme sums,
// premiums and project ceiling. Premiums never reduce the base.
func Aggrega(voci []models.VoceProgetto, opz Opzioni) (*models.Progetto, error) {
	if len(voci) == 0 {
		return nil, fmt.Errorf("project: aggregazione di un progetto vuoto")
	}

	p := &models.Progetto{
		ID:              uuid.NewString(),
		Voci:            voci,
		IncentivoBase:   make(map[models.Schema]float64),
		Bonus:           make(map[models.Schema][]models.BonusProgetto),
		IncentivoFinale: make(map[models.Schema]float64),
	}

	titoloII := 0
	for _, voce := range voci {
		if !voce.Verifica.Idoneo {
			continue
		}
		if models.TitoloII[voce.Intervento.Codice] {
			titoloII++
		}
		for schema, inc := range voce.Incentivi {
			p.IncentivoBase[schema] += inc.ImportoNominale
			if schema == models.ContoTermico {
				p.SpesaTotale += inc.SpesaAmmissibile
			}
		}
	}

	bonusMulti := voci[0].Intervento.Soggetto.SoggettoEconomico() && titoloII >= 2
	bonusRiduzione := opz.HaAPE && opz.RiduzioneEnergia != nil && *opz.RiduzioneEnergia >= sogliaRiduzioneBonus

	for schema, base := range p.IncentivoBase {
		totaleBonus := 0.0
		if bonusMulti {
			importo := centesimi(base * quotaBonusMultiIntervento)
			p.Bonus[schema] = append(p.Bonus[schema], models.BonusProgetto{Motivo: motivoMultiIntervento, Importo: importo})
			totaleBonus += importo
		}
		if bonusRiduzione {
			importo := centesimi(base * quotaBonusRiduzione)
			p.Bonus[schema] = append(p.Bonus[schema], models.BonusProgetto{Motivo: motivoRiduzione, Importo: importo})
			totaleBonus += importo
		}
		finale := base + totaleBonus
		if opz.MassimaleProgetto > 0 && finale > opz.MassimaleProgetto {
			// The project ceiling erodes the premiums, never the base.
			finale = math.Max(base, opz.MassimaleProgetto)
		}
		if finale < base {
			return nil, &ErroreInvariante{Motivo: fmt.Sprintf("incentivo finale %s %.2f € sotto la base %.2f €", schema, finale, base)}
		}
		p.IncentivoFinale[schema] = centesimi(finale)
	}
	return p, nil
}

// pianificaProgetto builds the per-scheme disbursement plans: the
// interventions' installments are merged by summing coincident deadlines;
// the project premiums are added to the last installment.
func pianificaProgetto(p *models.Progetto, opz Opzioni) error {
	soggetto := p.Voci[0].Intervento.Soggetto
	modalita := opz.Modalita
	if modalita == scheduler.ModalitaPrenotazione && !soggettiPrenotazione[soggetto] {
		logger.Warn("prenotazione non disponibile per il soggetto, erogazione ordinaria", map[string]interface{}{
			"soggetto": string(soggetto),
		})
		modalita = scheduler.ModalitaOrdinaria
	}

	p.Piani = make(map[models.Schema]models.PianoErogazione)
	for schema := range p.IncentivoBase {
		var piani []models.PianoErogazione
		for _, voce := range p.Voci {
			if !voce.Verifica.Idoneo {
				continue
			}
			inc, ok := voce.Incentivi[schema]
			if !ok || inc.ImportoNominale <= 0 {
				continue
			}
			regole := scheduler.Regole{
				Annualita:        calculator.Annualita(voce.Intervento),
				SogliaRataUnica:  opz.SogliaRataUnica,
				RataUnicaForzata: soggettiRataUnica[soggetto],
				QuotaIntermedia:  opz.QuotaIntermedia,
			}
			piano, err := scheduler.Pianifica(schema, inc.ImportoNominale, regole, modalita)
			if err != nil {
				return err
			}
			piani = append(piani, piano)
		}
		unito := unisciPiani(schema, piani)
		if extra := centesimi(p.IncentivoFinale[schema] - p.IncentivoBase[schema]); extra > 0 && len(unito.Rate) > 0 {
			ultima := &unito.Rate[len(unito.Rate)-1]
			ultima.Importo = centesimi(ultima.Importo + extra)
		}
		if math.Abs(unito.Totale()-p.IncentivoFinale[schema]) > 0.01 {
			return &ErroreInvariante{Motivo: fmt.Sprintf("piano %s: somma rate %.2f € diversa dall'incentivo finale %.2f €", schema, unito.Totale(), p.IncentivoFinale[schema])}
		}
		p.Piani[schema] = unito
	}
	return nil
}

// unisciPiani sums installments with the same deadline and orders them:
// ammissione, stato avanzamento, conclusione, increasing annuities.
func unisciPiani(schema models.Schema, piani []models.PianoErogazione) models.PianoErogazione {
	somme := make(map[models.Evento]float64)
	for _, piano := range piani {
		for _, rata := range piano.Rate {
			somme[rata.Evento] += rata.Importo
		}
	}
	ordine := []models.Evento{
		{Tipo: models.EventoAmmissione},
		{Tipo: models.EventoStatoAvanzamento},
		{Tipo: models.EventoConclusione},
	}
	maxAnno := 0
	for evento := range somme {
		if evento.Tipo == models.EventoAnnualita && evento.Anno > maxAnno {
			maxAnno = evento.Anno
		}
	}
	for anno := 1; anno <= maxAnno; anno++ {
		ordine = append(ordine, models.Evento{Tipo: models.EventoAnnualita, Anno: anno})
	}

	unito := models.PianoErogazione{Schema: schema}
	for _, evento := range ordine {
		importo, ok := somme[evento]
		if !ok {
			continue
		}
		unito.Rate = append(unito.Rate, models.Rata{
			Etichetta: etichettaEvento(evento),
			Importo:   centesimi(importo),
			Evento:    evento,
		})
	}
	return unito
}

func etichettaEvento(e models.Evento) string {
	switch e.Tipo {
	case models.EventoAmmissione:
		return "acconto in ammissione"
	case models.EventoStatoAvanzamento:
		return "rata intermedia"
	case models.EventoConclusione:
		return "erogazione a conclusione"
	default:
		return fmt.Sprintf("annualità %d", e.Anno)
	}
}

func centesimi(v float64) float64 {
	return math.Round(v*100) / 100
}
