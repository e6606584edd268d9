// Package refdata provides the reference tables of the incentive
// mechanism: usage hours per climate zone, valorization coefficients per
// band, unit cost ceilings, minimum efficiencies and the detrazione
// fiscale rules. Tables are immutable and loaded once from the embedded
// YAML document.
package refdata

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"contotermico/internal/models"
)

//go:embed tabelle.yaml
var tabelleYAML []byte

// ErroreDatiMancanti reports a missing table/key combination. It means an
// incomplete table, not a user mistake: it must propagate, never be
// swallowed.
type ErroreDatiMancanti struct {
	Tabella string
	Chiave  string
}

func (e *ErroreDatiMancanti) Error() string {
	return fmt.Sprintf("refdata: dato mancante in tabella %q per chiave %q", e.Tabella, e.Chiave)
}

// Fascia is a typed interval with explicit boundary semantics.
// Default: lower bound inclusive, upper bound exclusive.
type Fascia struct {
	Min        float64 `yaml:"min"`
	Max        float64 `yaml:"max"`
	Valore     float64 `yaml:"valore"`
	MinEscluso bool    `yaml:"min_escluso"`
	MaxIncluso bool    `yaml:"max_incluso"`
}

// Contiene checks membership honoring the declared boundaries.
func (f Fascia) Contiene(v float64) bool {
	if f.MinEscluso {
		if v <= f.Min {
			return false
		}
	} else if v < f.Min {
		return false
	}
	if f.MaxIncluso {
		return v <= f.Max
	}
	return v < f.Max
}

// CercaFascia resolves the value of the first band containing v.
// The only band-lookup routine: boundary semantics live here and in the
// table declarations, never in callers.
func CercaFascia(fasce []Fascia, v float64) (float64, bool) {
	for _, f := range fasce {
		if f.Contiene(v) {
			return f.Valore, true
		}
	}
	return 0, false
}

// RegoleDetrazione describes an intervention's access to the detrazione
// fiscale scheme.
type RegoleDetrazione struct {
	Percentuale float64 `yaml:"percentuale"`
	Massimo     float64 `yaml:"massimo"`
}

// EfficienzeMinime collects the minimum performance thresholds per type.
type EfficienzeMinime struct {
	EtaSMinima                    map[string]float64                              `yaml:"eta_s_minima"`
	SCOPMinimo                    map[string]float64                              `yaml:"scop_minimo"`
	COPMinimoScaldacqua           float64                                         `yaml:"cop_minimo_scaldacqua"`
	TrasmittanzaLimite            map[string]map[models.ZonaClimatica]float64     `yaml:"trasmittanza_limite"`
	GtotMassimo                   float64                                         `yaml:"gtot_massimo"`
	RendimentoMinimoBiomassa      float64                                         `yaml:"rendimento_minimo_biomassa"`
	ClasseEmissioniMinima         int                                             `yaml:"classe_emissioni_minima"`
	EfficienzaMinimaIlluminazione float64                                         `yaml:"efficienza_minima_illuminazione"`
}

// Tabelle is the reference data provider. Read only.
type Tabelle struct {
	OreUtilizzoZona       map[models.ZonaClimatica]float64       `yaml:"ore_utilizzo"`
	Coefficienti          map[string]map[string][]Fascia         `yaml:"coefficienti_valorizzazione"`
	MassimaliUnitari      map[string]map[string]float64          `yaml:"massimali_unitari"`
	PercentualiCT         map[string]float64                     `yaml:"percentuali_conto_termico"`
	MassimaliIncentivo    map[string]float64                     `yaml:"massimali_incentivo"`
	MassimaliScaldacqua   map[string]map[string]float64          `yaml:"massimali_scaldacqua"`
	Efficienze            EfficienzeMinime                       `yaml:"efficienze_minime"`
	CoefficienteEmissioni map[int]float64                        `yaml:"coefficiente_emissioni"`
	KpMassimo             float64                                `yaml:"kp_massimo"`
	Detrazione            map[string]RegoleDetrazione            `yaml:"detrazione"`
}

// Carica parses a YAML table document.
func Carica(doc []byte) (*Tabelle, error) {
	var t Tabelle
	if err := yaml.Unmarshal(doc, &t); err != nil {
		return nil, fmt.Errorf("refdata: tabelle non interpretabili: %w", err)
	}
	return &t, nil
}

var (
	defaultOnce sync.Once
	defaultTab  *Tabelle
)

// Default returns the embedded tables. An unparsable embedded document is
// a build defect, not a recoverable condition.
func Default() *Tabelle {
	defaultOnce.Do(func() {
		t, err := Carica(tabelleYAML)
		if err != nil {
			panic(err)
		}
		defaultTab = t
	})
	return defaultTab
}

// OreUtilizzo returns the conventional annual usage hours of the zone.
func (t *Tabelle) OreUtilizzo(zona models.ZonaClimatica) (float64, error) {
	h, ok := t.OreUtilizzoZona[zona]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "ore_utilizzo", Chiave: string(zona)}
	}
	return h, nil
}

// Coefficiente resolves Ci by intervention, sub-type and band quantity.
func (t *Tabelle) Coefficiente(codice models.CodiceIntervento, sottotipo string, v float64) (float64, error) {
	chiave := string(codice) + "/" + sottotipo
	sub, ok := t.Coefficienti[string(codice)]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "coefficienti_valorizzazione", Chiave: chiave}
	}
	fasce, ok := sub[sottotipo]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "coefficienti_valorizzazione", Chiave: chiave}
	}
	ci, ok := CercaFascia(fasce, v)
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "coefficienti_valorizzazione", Chiave: fmt.Sprintf("%s@%g", chiave, v)}
	}
	return ci, nil
}

// MassimaleUnitario returns the maximum eligible cost per physical unit.
func (t *Tabelle) MassimaleUnitario(codice models.CodiceIntervento, chiave string) (float64, error) {
	sub, ok := t.MassimaliUnitari[string(codice)]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "massimali_unitari", Chiave: string(codice)}
	}
	m, ok := sub[chiave]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "massimali_unitari", Chiave: string(codice) + "/" + chiave}
	}
	return m, nil
}

// PercentualeCT returns the conto termico incentivable percentage.
func (t *Tabelle) PercentualeCT(codice models.CodiceIntervento) (float64, error) {
	p, ok := t.PercentualiCT[string(codice)]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "percentuali_conto_termico", Chiave: string(codice)}
	}
	return p, nil
}

// MassimaleIncentivo returns the absolute incentive ceiling, if defined.
func (t *Tabelle) MassimaleIncentivo(codice models.CodiceIntervento) (float64, bool) {
	m, ok := t.MassimaliIncentivo[string(codice)]
	return m, ok
}

// MassimaleScaldacqua returns the incentive cap by class and tank size.
func (t *Tabelle) MassimaleScaldacqua(classe string, capacitaLitri float64) (float64, error) {
	sub, ok := t.MassimaliScaldacqua[classe]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "massimali_scaldacqua", Chiave: classe}
	}
	taglia := "piccolo"
	if capacitaLitri > 150 {
		taglia = "grande"
	}
	m, ok := sub[taglia]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "massimali_scaldacqua", Chiave: classe + "/" + taglia}
	}
	return m, nil
}

// EtaSMinima returns the minimum seasonal efficiency of the sub-type.
func (t *Tabelle) EtaSMinima(sottotipo string) (float64, error) {
	v, ok := t.Efficienze.EtaSMinima[sottotipo]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "eta_s_minima", Chiave: sottotipo}
	}
	return v, nil
}

// SCOPMinimo returns the minimum SCOP of the sub-type.
func (t *Tabelle) SCOPMinimo(sottotipo string) (float64, error) {
	v, ok := t.Efficienze.SCOPMinimo[sottotipo]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "scop_minimo", Chiave: sottotipo}
	}
	return v, nil
}

// TrasmittanzaLimite returns the U-value limit for the element in the
// given climate zone.
func (t *Tabelle) TrasmittanzaLimite(elemento string, zona models.ZonaClimatica) (float64, error) {
	sub, ok := t.Efficienze.TrasmittanzaLimite[elemento]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "trasmittanza_limite", Chiave: elemento}
	}
	u, ok := sub[zona]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "trasmittanza_limite", Chiave: elemento + "/" + string(zona)}
	}
	return u, nil
}

// Ce returns the emission-class premium coefficient.
func (t *Tabelle) Ce(classe int) (float64, error) {
	c, ok := t.CoefficienteEmissioni[classe]
	if !ok {
		return 0, &ErroreDatiMancanti{Tabella: "coefficiente_emissioni", Chiave: fmt.Sprintf("%d", classe)}
	}
	return c, nil
}

// RegoleDetrazionePer returns the detrazione fiscale rules for the
// intervention. The second value is false when the intervention has no
// access to the scheme.
func (t *Tabelle) RegoleDetrazionePer(codice models.CodiceIntervento) (RegoleDetrazione, bool) {
	r, ok := t.Detrazione[string(codice)]
	return r, ok
}
