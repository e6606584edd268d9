package models

// CodiceIntervento identifies an intervention of the incentivable catalog.
type CodiceIntervento string

const (
	PompaDiCalore      CodiceIntervento = "pompa_di_calore"
	Isolamento         CodiceIntervento = "isolamento"
	Serramenti         CodiceIntervento = "serramenti"
	Biomassa           CodiceIntervento = "biomassa"
	SolareTermico      CodiceIntervento = "solare_termico"
	Fotovoltaico       CodiceIntervento = "fotovoltaico"
	ColonnineRicarica  CodiceIntervento = "colonnine_ricarica"
	ScaldacquaPdC      CodiceIntervento = "scaldacqua_pdc"
	Illuminazione      CodiceIntervento = "illuminazione"
	Schermature        CodiceIntervento = "schermature"
	BuildingAutomation CodiceIntervento = "building_automation"
	Ibrido             CodiceIntervento = "ibrido"
)

// TipoSoggetto classifies the applicant.
type TipoSoggetto string

const (
	Privato                  TipoSoggetto = "privato"
	Condominio               TipoSoggetto = "condominio"
	PubblicaAmministrazione  TipoSoggetto = "pubblica_amministrazione"
	Impresa                  TipoSoggetto = "impresa"
	TerzoSettoreNonEconomico TipoSoggetto = "terzo_settore_non_economico"
	TerzoSettoreEconomico    TipoSoggetto = "terzo_settore_economico"
	ESCo                     TipoSoggetto = "esco"
)

// SoggettoEconomico reports whether the subject operates as an economic
// entity, which triggers the extra constraints on non-residential buildings.
func (t TipoSoggetto) SoggettoEconomico() bool {
	return t == Impresa || t == TerzoSettoreEconomico
}

// CategoriaEdificio separates residential from non-residential building classes.
type CategoriaEdificio string

const (
	Residenziale    CategoriaEdificio = "residenziale"
	NonResidenziale CategoriaEdificio = "non_residenziale"
)

// ZonaClimatica A-F as defined by DPR 412/93.
type ZonaClimatica string

const (
	ZonaA ZonaClimatica = "A"
	ZonaB ZonaClimatica = "B"
	ZonaC ZonaClimatica = "C"
	ZonaD ZonaClimatica = "D"
	ZonaE ZonaClimatica = "E"
	ZonaF ZonaClimatica = "F"
)

// Schema identifies the incentive regime.
type Schema string

const (
	ContoTermico      Schema = "conto_termico"
	DetrazioneFiscale Schema = "detrazione_fiscale"
)

// Alimentazione is the heat pump energy source.
type Alimentazione string

const (
	AlimentazioneElettrica Alimentazione = "elettrica"
	AlimentazioneGas       Alimentazione = "gas"
)

// TipoPompaCalore distinguishes heat pump technologies by source and sink.
type TipoPompaCalore string

const (
	AriaAcqua  TipoPompaCalore = "aria_acqua"
	AcquaAcqua TipoPompaCalore = "acqua_acqua"
	AriaAria   TipoPompaCalore = "aria_aria"
	Geotermica TipoPompaCalore = "geotermica"
)

// StrutturaOpaca is the building element targeted by insulation works.
type StrutturaOpaca string

const (
	Pareti    StrutturaOpaca = "pareti"
	Copertura StrutturaOpaca = "copertura"
	Pavimento StrutturaOpaca = "pavimento"
)

// TipoBiomassa distinguishes biomass generator types.
type TipoBiomassa string

const (
	CaldaiaBiomassa TipoBiomassa = "caldaia"
	StufaPellet     TipoBiomassa = "stufa_pellet"
	Termocamino     TipoBiomassa = "termocamino"
)

// TipoCollettore is the solar thermal collector type.
type TipoCollettore string

const (
	CollettorePiano      TipoCollettore = "piano"
	CollettoreSottovuoto TipoCollettore = "sottovuoto"
	CollettoreScoperto   TipoCollettore = "scoperto"
)

// Technical data per intervention type. An Intervento sets exactly one,
// consistent with the declared Codice.

type DatiPompaCalore struct {
	Tipo          TipoPompaCalore `json:"tipo"`
	Alimentazione Alimentazione   `json:"alimentazione"`
	PotenzaKW     float64         `json:"potenza_kw"`
	SCOP          float64         `json:"scop"`
	EtaS          float64         `json:"eta_s"` // seasonal efficiency %, e.g. 150
}

type DatiIsolamento struct {
	Struttura    StrutturaOpaca `json:"struttura"`
	SuperficieMQ float64        `json:"superficie_mq"`
	Trasmittanza float64        `json:"trasmittanza"` // W/m²K after the works
}

type DatiSerramenti struct {
	SuperficieMQ float64 `json:"superficie_mq"`
	Trasmittanza float64 `json:"trasmittanza"`
}

type DatiBiomassa struct {
	Tipo            TipoBiomassa `json:"tipo"`
	PotenzaKW       float64      `json:"potenza_kw"`
	ClasseEmissioni int          `json:"classe_emissioni"` // stars 1..5
	Rendimento      float64      `json:"rendimento"`       // %
}

type DatiSolareTermico struct {
	Tipo              TipoCollettore `json:"tipo"`
	SuperficieLordaMQ float64        `json:"superficie_lorda_mq"`
	SolarKeymark      bool           `json:"solar_keymark"`
}

type DatiFotovoltaico struct {
	PotenzaKW           float64 `json:"potenza_kw"`
	CapacitaAccumuloKWh float64 `json:"capacita_accumulo_kwh"`
}

type DatiColonnine struct {
	NumeroPunti int     `json:"numero_punti"`
	PotenzaKW   float64 `json:"potenza_kw"`
}

type DatiScaldacqua struct {
	ClasseEnergetica string  `json:"classe_energetica"` // "A", "B", ...
	CapacitaLitri    float64 `json:"capacita_litri"`
	COP              float64 `json:"cop"`
}

type DatiIlluminazione struct {
	PotenzaInstallataKW float64 `json:"potenza_installata_kw"`
	EfficienzaLmW       float64 `json:"efficienza_lm_w"`
}

type DatiSchermature struct {
	SuperficieMQ float64 `json:"superficie_mq"`
	FattoreGtot  float64 `json:"fattore_gtot"`
}

type DatiBuildingAutomation struct {
	SuperficieUtileMQ float64 `json:"superficie_utile_mq"`
	ClasseBACS        string  `json:"classe_bacs"` // "A", "B", "C"
}

type DatiIbrido struct {
	PotenzaKW float64 `json:"potenza_kw"`
	SCOP      float64 `json:"scop"`
	EtaS      float64 `json:"eta_s"`
}

// Intervento describes a single work candidate for the incentive.
// Immutable after validation: a negative outcome produces a new Verifica,
// never a mutation of the intervention.
type Intervento struct {
	Codice          CodiceIntervento  `json:"codice"`
	Soggetto        TipoSoggetto      `json:"soggetto"`
	Edificio        CategoriaEdificio `json:"edificio"`
	Zona            ZonaClimatica     `json:"zona"`
	SpesaDichiarata float64           `json:"spesa_dichiarata"`

	PompaCalore   *DatiPompaCalore        `json:"pompa_calore,omitempty"`
	Isolamento    *DatiIsolamento         `json:"isolamento,omitempty"`
	Serramenti    *DatiSerramenti         `json:"serramenti,omitempty"`
	Biomassa      *DatiBiomassa           `json:"biomassa,omitempty"`
	SolareTermico *DatiSolareTermico      `json:"solare_termico,omitempty"`
	Fotovoltaico  *DatiFotovoltaico       `json:"fotovoltaico,omitempty"`
	Colonnine     *DatiColonnine          `json:"colonnine,omitempty"`
	Scaldacqua    *DatiScaldacqua         `json:"scaldacqua,omitempty"`
	Illuminazione *DatiIlluminazione      `json:"illuminazione,omitempty"`
	Schermature   *DatiSchermature        `json:"schermature,omitempty"`
	Automation    *DatiBuildingAutomation `json:"building_automation,omitempty"`
	Ibrido        *DatiIbrido             `json:"ibrido,omitempty"`
}

// Verifica is the eligibility outcome of an intervention. Any blocking
// error forces Idoneo=false and Punteggio=0.
type Verifica struct {
	Idoneo       bool     `json:"idoneo"`
	Punteggio    int      `json:"punteggio"` // 0..100
	Errori       []string `json:"errori,omitempty"`
	Avvisi       []string `json:"avvisi,omitempty"`
	Suggerimenti []string `json:"suggerimenti,omitempty"`
}

// EsitoVincoli is the result of the extra constraints for economic subjects
// on non-residential buildings. Trivially satisfied in every other case.
type EsitoVincoli struct {
	RiduzioneRichiesta float64 `json:"riduzione_richiesta"` // fraction, e.g. 0.20
	RiduzioneEffettiva float64 `json:"riduzione_effettiva"`
	RiduzioneNota      bool    `json:"riduzione_nota"`
	Soddisfatto        bool    `json:"soddisfatto"`
	PompaGasAmmessa    bool    `json:"pompa_gas_ammessa"`
	RichiedeAPE        bool    `json:"richiede_ape"`
}

// Incentivo is the calculation result for a single scheme.
type Incentivo struct {
	Schema             Schema   `json:"schema"`
	ImportoNominale    float64  `json:"importo_nominale"`
	SpesaAmmissibile   float64  `json:"spesa_ammissibile"`
	MassimaleApplicato string   `json:"massimale_applicato,omitempty"` // binding ceiling, if any
	Traccia            []string `json:"traccia,omitempty"`
}

// TipoEvento identifies the due event of an installment.
type TipoEvento string

const (
	EventoAmmissione       TipoEvento = "ammissione"
	EventoStatoAvanzamento TipoEvento = "stato_avanzamento"
	EventoConclusione      TipoEvento = "conclusione"
	EventoAnnualita        TipoEvento = "annualita"
)

// Evento places an installment in time. Anno is set only for annuities.
type Evento struct {
	Tipo TipoEvento `json:"tipo"`
	Anno int        `json:"anno,omitempty"`
}

// Rata is a single disbursement.
type Rata struct {
	Etichetta string  `json:"etichetta"`
	Importo   float64 `json:"importo"`
	Evento    Evento  `json:"evento"`
}

// PianoErogazione is the ordered installment sequence of a scheme.
// Invariant: the installments sum to the nominal amount within €0.01.
type PianoErogazione struct {
	Schema Schema `json:"schema"`
	Rate   []Rata `json:"rate"`
}

// Totale sums the installment amounts.
func (p PianoErogazione) Totale() float64 {
	t := 0.0
	for _, r := range p.Rate {
		t += r.Importo
	}
	return t
}

// VoceProgetto ties an intervention to its verification and incentives.
type VoceProgetto struct {
	Intervento Intervento           `json:"intervento"`
	Verifica   Verifica             `json:"verifica"`
	Vincoli    *EsitoVincoli        `json:"vincoli,omitempty"`
	Incentivi  map[Schema]Incentivo `json:"incentivi,omitempty"`
}

// BonusProgetto is a premium applied at project level.
type BonusProgetto struct {
	Motivo  string  `json:"motivo"`
	Importo float64 `json:"importo"`
}

// Progetto aggregates interventions on the same building.
// Immutable once handed to the financial comparison.
type Progetto struct {
	ID              string                     `json:"id"`
	Voci            []VoceProgetto             `json:"voci"`
	SpesaTotale     float64                    `json:"spesa_totale"`
	IncentivoBase   map[Schema]float64         `json:"incentivo_base"`
	Bonus           map[Schema][]BonusProgetto `json:"bonus,omitempty"`
	IncentivoFinale map[Schema]float64         `json:"incentivo_finale"`
	Piani           map[Schema]PianoErogazione `json:"piani,omitempty"`
}

// Confronto is the present-value comparison between the schemes.
type Confronto struct {
	ValoreAttuale   map[Schema]float64 `json:"valore_attuale"`
	SchemaPreferito Schema             `json:"schema_preferito"`
	Vantaggio       float64            `json:"vantaggio"`
}

// DipendenzeIntervento declares which interventions are incentivable only
// alongside a trainante (leading) intervention. The dependency is
// structural: without an eligible trainante the dependent is not admissible.
var DipendenzeIntervento = map[CodiceIntervento]CodiceIntervento{
	Fotovoltaico:      PompaDiCalore,
	ColonnineRicarica: PompaDiCalore,
}

// TitoloII collects the renewable thermal production interventions,
// relevant to the project premiums and to the terziario constraints.
var TitoloII = map[CodiceIntervento]bool{
	PompaDiCalore: true,
	Biomassa:      true,
	SolareTermico: true,
	ScaldacquaPdC: true,
	Ibrido:        true,
}
