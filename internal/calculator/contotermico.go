package calculator

import (
	"fmt"
	"math"

	"contotermico/internal/models"
	"contotermico/internal/refdata"
)

func calcolaContoTermico(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	switch iv.Codice {
	case models.PompaDiCalore:
		return ctPompaCalore(iv, tab)
	case models.Ibrido:
		return ctIbrido(iv, tab)
	case models.Biomassa:
		return ctBiomassa(iv, tab)
	case models.SolareTermico:
		return ctSolareTermico(iv, tab)
	case models.ScaldacquaPdC:
		return ctScaldacqua(iv, tab)
	case models.Isolamento:
		return ctIsolamento(iv, tab)
	case models.Serramenti:
		return ctSerramenti(iv, tab)
	case models.Schermature:
		return ctSchermature(iv, tab)
	case models.Illuminazione:
		return ctIlluminazione(iv, tab)
	case models.BuildingAutomation:
		return ctAutomation(iv, tab)
	case models.Fotovoltaico:
		return ctFotovoltaico(iv, tab)
	case models.ColonnineRicarica:
		return ctColonnine(iv, tab)
	}
	return models.Incentivo{}, &refdata.ErroreDatiMancanti{Tabella: "calcolatori", Chiave: string(iv.Codice)}
}

// ctPompaCalore: annual I = Pn × Quf × (1 − 1/SCOP) × kp × Ci.
// kp rewards seasonal efficiency above the minimum, capped at kp_massimo.
func ctPompaCalore(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.PompaCalore
	if d == nil || d.PotenzaKW <= 0 || d.SCOP <= 1 {
		return nonCalcolabile(models.ContoTermico, "dati pompa di calore assenti o non validi"), nil
	}
	quf, err := tab.OreUtilizzo(iv.Zona)
	if err != nil {
		return models.Incentivo{}, err
	}
	ci, err := tab.Coefficiente(models.PompaDiCalore, string(d.Tipo), d.PotenzaKW)
	if err != nil {
		return models.Incentivo{}, err
	}
	etaMin, err := tab.EtaSMinima(string(d.Tipo))
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoTermico(iv, tab, parametriTermici{
		potenzaKW:  d.PotenzaKW,
		quf:        quf,
		quotaUtile: 1 - 1/d.SCOP,
		ci:         ci,
		kp:         premialita(d.EtaS, etaMin, tab.KpMassimo),
		annualita:  Annualita(iv),
	}), nil
}

func ctIbrido(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Ibrido
	if d == nil || d.PotenzaKW <= 0 || d.SCOP <= 1 {
		return nonCalcolabile(models.ContoTermico, "dati sistema ibrido assenti o non validi"), nil
	}
	quf, err := tab.OreUtilizzo(iv.Zona)
	if err != nil {
		return models.Incentivo{}, err
	}
	ci, err := tab.Coefficiente(models.Ibrido, "default", d.PotenzaKW)
	if err != nil {
		return models.Incentivo{}, err
	}
	etaMin, err := tab.EtaSMinima("ibrido")
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoTermico(iv, tab, parametriTermici{
		potenzaKW:  d.PotenzaKW,
		quf:        quf,
		quotaUtile: 1 - 1/d.SCOP,
		ci:         ci,
		kp:         premialita(d.EtaS, etaMin, tab.KpMassimo),
		annualita:  Annualita(iv),
	}), nil
}

func ctBiomassa(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Biomassa
	if d == nil || d.PotenzaKW <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati generatore a biomassa assenti o non validi"), nil
	}
	quf, err := tab.OreUtilizzo(iv.Zona)
	if err != nil {
		return models.Incentivo{}, err
	}
	ci, err := tab.Coefficiente(models.Biomassa, string(d.Tipo), d.PotenzaKW)
	if err != nil {
		return models.Incentivo{}, err
	}
	ce, err := tab.Ce(d.ClasseEmissioni)
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoTermico(iv, tab, parametriTermici{
		potenzaKW:   d.PotenzaKW,
		quf:         quf,
		quotaUtile:  1,
		ci:          ci,
		kp:          ce,
		etichettaKp: fmt.Sprintf("Ce classe %d stelle", d.ClasseEmissioni),
		annualita:   Annualita(iv),
	}), nil
}

// parametriTermici gathers the factors of the produced-energy formula.
type parametriTermici struct {
	potenzaKW   float64
	quf         float64
	quotaUtile  float64 // 1 − 1/SCOP per le pompe di calore, 1 per la biomassa
	ci          float64
	kp          float64
	etichettaKp string
	annualita   int
}

func premialita(etaS, etaMin, kpMassimo float64) float64 {
	if etaS <= 0 || etaMin <= 0 {
		return 1
	}
	kp := etaS / etaMin
	if kp > kpMassimo {
		return kpMassimo
	}
	return kp
}

func incentivoTermico(iv models.Intervento, tab *refdata.Tabelle, p parametriTermici) models.Incentivo {
	inc := models.Incentivo{Schema: models.ContoTermico, SpesaAmmissibile: iv.SpesaDichiarata}
	ei := p.potenzaKW * p.quf * p.quotaUtile
	etichetta := p.etichettaKp
	if etichetta == "" {
		etichetta = "kp"
	}
	annuo := ei * p.ci * p.kp
	totale := centesimi(annuo * float64(p.annualita))
	inc.Traccia = append(inc.Traccia,
		fmt.Sprintf("energia utile Ei = %.1f × %.0f × %.4f = %.1f kWh", p.potenzaKW, p.quf, p.quotaUtile, ei),
		fmt.Sprintf("Ci = %.4g €/kWh, %s = %.4f", p.ci, etichetta, p.kp),
		fmt.Sprintf("incentivo annuo %.2f €, %d annualità, totale %.2f €", annuo, p.annualita, totale))
	inc.ImportoNominale = totale
	return inc
}

func ctSolareTermico(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.SolareTermico
	if d == nil || d.SuperficieLordaMQ <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati solare termico assenti o non validi"), nil
	}
	ci, err := tab.Coefficiente(models.SolareTermico, string(d.Tipo), d.SuperficieLordaMQ)
	if err != nil {
		return models.Incentivo{}, err
	}
	anni := Annualita(iv)
	annuo := ci * d.SuperficieLordaMQ
	totale := centesimi(annuo * float64(anni))
	return models.Incentivo{
		Schema:           models.ContoTermico,
		SpesaAmmissibile: iv.SpesaDichiarata,
		ImportoNominale:  totale,
		Traccia: []string{
			fmt.Sprintf("Ci = %.0f €/m²·anno per %.1f m² lordi (%s)", ci, d.SuperficieLordaMQ, d.Tipo),
			fmt.Sprintf("incentivo annuo %.2f €, %d annualità, totale %.2f €", annuo, anni, totale),
		},
	}, nil
}

func ctScaldacqua(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Scaldacqua
	if d == nil || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati scaldacqua assenti o spesa non positiva"), nil
	}
	perc, err := tab.PercentualeCT(models.ScaldacquaPdC)
	if err != nil {
		return models.Incentivo{}, err
	}
	massimale, err := tab.MassimaleScaldacqua(d.ClasseEnergetica, d.CapacitaLitri)
	if err != nil {
		return models.Incentivo{}, err
	}
	inc := models.Incentivo{Schema: models.ContoTermico, SpesaAmmissibile: iv.SpesaDichiarata}
	calcolato := perc * iv.SpesaDichiarata
	inc.Traccia = append(inc.Traccia,
		fmt.Sprintf("%.0f%% di %.2f € = %.2f €", perc*100, iv.SpesaDichiarata, calcolato),
		fmt.Sprintf("massimale classe %s, %.0f litri: %.2f €", d.ClasseEnergetica, d.CapacitaLitri, massimale))
	if calcolato > massimale {
		inc.ImportoNominale = centesimi(massimale)
		inc.MassimaleApplicato = fmt.Sprintf("massimale scaldacqua %.0f €", massimale)
	} else {
		inc.ImportoNominale = centesimi(calcolato)
	}
	return inc, nil
}

// incentivoSuperficie covers percentage interventions with a cost ceiling
// per physical unit and an absolute incentive ceiling.
func incentivoSuperficie(iv models.Intervento, tab *refdata.Tabelle, quantita, costoMax float64, etichettaUnita string) (models.Incentivo, error) {
	perc, err := tab.PercentualeCT(iv.Codice)
	if err != nil {
		return models.Incentivo{}, err
	}
	inc := models.Incentivo{Schema: models.ContoTermico}
	tetto := costoMax * quantita
	inc.SpesaAmmissibile = math.Min(iv.SpesaDichiarata, tetto)
	inc.Traccia = append(inc.Traccia,
		fmt.Sprintf("spesa ammissibile %.2f € = min(%.2f €, %.0f %s × %.2f)", inc.SpesaAmmissibile, iv.SpesaDichiarata, costoMax, etichettaUnita, quantita))
	calcolato := perc * inc.SpesaAmmissibile
	inc.Traccia = append(inc.Traccia, fmt.Sprintf("%.0f%% di %.2f € = %.2f €", perc*100, inc.SpesaAmmissibile, calcolato))
	if iv.SpesaDichiarata > tetto {
		inc.MassimaleApplicato = fmt.Sprintf("costo massimo %.0f %s", costoMax, etichettaUnita)
	}
	if assoluto, ok := tab.MassimaleIncentivo(iv.Codice); ok && calcolato > assoluto {
		calcolato = assoluto
		inc.MassimaleApplicato = fmt.Sprintf("massimale di incentivo %.0f €", assoluto)
		inc.Traccia = append(inc.Traccia, fmt.Sprintf("applicato massimale assoluto %.2f €", assoluto))
	}
	inc.ImportoNominale = centesimi(calcolato)
	return inc, nil
}

func ctIsolamento(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Isolamento
	if d == nil || d.SuperficieMQ <= 0 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati isolamento assenti o non validi"), nil
	}
	cmax, err := tab.MassimaleUnitario(models.Isolamento, string(d.Struttura))
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoSuperficie(iv, tab, d.SuperficieMQ, cmax, "€/m²")
}

func ctSerramenti(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Serramenti
	if d == nil || d.SuperficieMQ <= 0 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati serramenti assenti o non validi"), nil
	}
	cmax, err := tab.MassimaleUnitario(models.Serramenti, string(iv.Zona))
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoSuperficie(iv, tab, d.SuperficieMQ, cmax, "€/m²")
}

func ctSchermature(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Schermature
	if d == nil || d.SuperficieMQ <= 0 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati schermature assenti o non validi"), nil
	}
	cmax, err := tab.MassimaleUnitario(models.Schermature, "mq")
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoSuperficie(iv, tab, d.SuperficieMQ, cmax, "€/m²")
}

func ctIlluminazione(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Illuminazione
	if d == nil || d.PotenzaInstallataKW <= 0 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati illuminazione assenti o non validi"), nil
	}
	cmax, err := tab.MassimaleUnitario(models.Illuminazione, "kw")
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoSuperficie(iv, tab, d.PotenzaInstallataKW, cmax, "€/kW")
}

func ctAutomation(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Automation
	if d == nil || d.SuperficieUtileMQ <= 0 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati building automation assenti o non validi"), nil
	}
	cmax, err := tab.MassimaleUnitario(models.BuildingAutomation, "mq")
	if err != nil {
		return models.Incentivo{}, err
	}
	return incentivoSuperficie(iv, tab, d.SuperficieUtileMQ, cmax, "€/m²")
}

// ctFotovoltaico: the coupled photovoltaic depends on the trainante heat
// pump; the cap at the trainante's value is applied at aggregation time,
// once the trainante's incentive is known.
func ctFotovoltaico(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Fotovoltaico
	if d == nil || d.PotenzaKW <= 0 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati fotovoltaico assenti o non validi"), nil
	}
	perc, err := tab.PercentualeCT(models.Fotovoltaico)
	if err != nil {
		return models.Incentivo{}, err
	}
	cmaxKW, err := tab.MassimaleUnitario(models.Fotovoltaico, "kw")
	if err != nil {
		return models.Incentivo{}, err
	}
	cmaxAccumulo, err := tab.MassimaleUnitario(models.Fotovoltaico, "accumulo_kwh")
	if err != nil {
		return models.Incentivo{}, err
	}
	inc := models.Incentivo{Schema: models.ContoTermico}
	tetto := cmaxKW*d.PotenzaKW + cmaxAccumulo*d.CapacitaAccumuloKWh
	inc.SpesaAmmissibile = math.Min(iv.SpesaDichiarata, tetto)
	inc.ImportoNominale = centesimi(perc * inc.SpesaAmmissibile)
	if iv.SpesaDichiarata > tetto {
		inc.MassimaleApplicato = fmt.Sprintf("costo massimo impianto %.2f €", tetto)
	}
	inc.Traccia = append(inc.Traccia,
		fmt.Sprintf("spesa ammissibile %.2f € = min(%.2f €, %.0f €/kW × %.1f + %.0f €/kWh × %.1f)",
			inc.SpesaAmmissibile, iv.SpesaDichiarata, cmaxKW, d.PotenzaKW, cmaxAccumulo, d.CapacitaAccumuloKWh),
		fmt.Sprintf("%.0f%% di %.2f € = %.2f €", perc*100, inc.SpesaAmmissibile, inc.ImportoNominale),
		"importo soggetto al tetto dell'incentivo del trainante")
	return inc, nil
}

func ctColonnine(iv models.Intervento, tab *refdata.Tabelle) (models.Incentivo, error) {
	d := iv.Colonnine
	if d == nil || d.NumeroPunti < 1 || iv.SpesaDichiarata <= 0 {
		return nonCalcolabile(models.ContoTermico, "dati infrastruttura di ricarica assenti o non validi"), nil
	}
	perc, err := tab.PercentualeCT(models.ColonnineRicarica)
	if err != nil {
		return models.Incentivo{}, err
	}
	cmax, err := tab.MassimaleUnitario(models.ColonnineRicarica, "punto")
	if err != nil {
		return models.Incentivo{}, err
	}
	inc := models.Incentivo{Schema: models.ContoTermico}
	tetto := cmax * float64(d.NumeroPunti)
	inc.SpesaAmmissibile = math.Min(iv.SpesaDichiarata, tetto)
	inc.ImportoNominale = centesimi(perc * inc.SpesaAmmissibile)
	if iv.SpesaDichiarata > tetto {
		inc.MassimaleApplicato = fmt.Sprintf("costo massimo %.0f € per punto di ricarica", cmax)
	}
	inc.Traccia = append(inc.Traccia,
		fmt.Sprintf("spesa ammissibile %.2f € per %d punti di ricarica", inc.SpesaAmmissibile, d.NumeroPunti),
		fmt.Sprintf("%.0f%% di %.2f € = %.2f €", perc*100, inc.SpesaAmmissibile, inc.ImportoNominale),
		"importo soggetto al tetto dell'incentivo del trainante")
	return inc, nil
}
