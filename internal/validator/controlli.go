package validator

import (
	"contotermico/internal/models"
	"contotermico/internal/refdata"
)

// Indicative cost thresholds above which a warning is emitted (not a
// rejection: the calculation still applies the spending ceilings).
const (
	costoIndicativoPompaKW  = 1800 // €/kW
	costoIndicativoSolareMQ = 1100 // €/m²
)

// Comparisons with regulatory thresholds keep the direction of the rule:
// minimum performances pass with ≥, maximum limits pass with ≤.
// A value exactly at the threshold is always admitted.

func controllaPompaCalore(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.PompaCalore
	if d == nil {
		r.errore("dati tecnici pompa di calore mancanti")
		return
	}
	if d.PotenzaKW <= 0 || d.PotenzaKW > 2000 {
		r.errore("potenza termica %.1f kW fuori dall'intervallo ammesso (0-2000 kW)", d.PotenzaKW)
	}
	etaMin, err := tab.EtaSMinima(string(d.Tipo))
	if err != nil {
		r.errore("tipologia pompa di calore %q non riconosciuta", d.Tipo)
	} else if d.EtaS < etaMin {
		r.errore("efficienza stagionale %.0f%% sotto la minima richiesta %.0f%%", d.EtaS, etaMin)
	}
	scopMin, err := tab.SCOPMinimo(string(d.Tipo))
	if err == nil && d.SCOP < scopMin {
		r.errore("SCOP %.2f sotto il minimo %.2f per la tipologia %s", d.SCOP, scopMin, d.Tipo)
	}
	if d.PotenzaKW > 0 && iv.SpesaDichiarata/d.PotenzaKW > costoIndicativoPompaKW {
		r.avviso("costo specifico %.0f €/kW oltre la soglia indicativa di %d €/kW", iv.SpesaDichiarata/d.PotenzaKW, costoIndicativoPompaKW)
	}
	if iv.Zona == models.ZonaE || iv.Zona == models.ZonaF {
		r.suggerisci("in zona %s l'abbinamento con isolamento aumenta la riduzione di energia primaria e l'accesso alle maggiorazioni", iv.Zona)
	}
	if d.Tipo == models.AriaAria && iv.Edificio == models.NonResidenziale {
		r.avviso("pompe aria-aria su non residenziale: verificare la copertura del fabbisogno di riscaldamento")
	}
}

func controllaIsolamento(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Isolamento
	if d == nil {
		r.errore("dati tecnici isolamento mancanti")
		return
	}
	if d.SuperficieMQ <= 0 {
		r.errore("superficie di intervento non positiva")
	}
	if d.Trasmittanza <= 0 {
		r.errore("trasmittanza post intervento non dichiarata")
	} else {
		limite, err := tab.TrasmittanzaLimite(string(d.Struttura), iv.Zona)
		if err != nil {
			r.errore("struttura opaca %q non riconosciuta", d.Struttura)
		} else if d.Trasmittanza > limite {
			r.errore("trasmittanza %.3f W/m²K oltre il limite %.3f per %s in zona %s", d.Trasmittanza, limite, d.Struttura, iv.Zona)
		}
	}
	if d.SuperficieMQ > 0 {
		if cmax, err := tab.MassimaleUnitario(models.Isolamento, string(d.Struttura)); err == nil {
			if iv.SpesaDichiarata/d.SuperficieMQ > cmax {
				r.avviso("costo unitario %.0f €/m² oltre il massimale di %.0f €/m²: la spesa eccedente non sarà incentivata", iv.SpesaDichiarata/d.SuperficieMQ, cmax)
			}
		}
	}
	r.suggerisci("abbinare la sostituzione dei serramenti consolida la riduzione di fabbisogno dell'involucro")
}

func controllaSerramenti(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Serramenti
	if d == nil {
		r.errore("dati tecnici serramenti mancanti")
		return
	}
	if d.SuperficieMQ <= 0 {
		r.errore("superficie serramenti non positiva")
	}
	if d.Trasmittanza <= 0 {
		r.errore("trasmittanza dei serramenti non dichiarata")
	} else {
		limite, err := tab.TrasmittanzaLimite("serramenti", iv.Zona)
		if err == nil && d.Trasmittanza > limite {
			r.errore("trasmittanza %.2f W/m²K oltre il limite %.2f della zona %s", d.Trasmittanza, limite, iv.Zona)
		}
	}
	if d.SuperficieMQ > 0 {
		if cmax, err := tab.MassimaleUnitario(models.Serramenti, string(iv.Zona)); err == nil {
			if iv.SpesaDichiarata/d.SuperficieMQ > cmax {
				r.avviso("costo unitario %.0f €/m² oltre il massimale di zona %.0f €/m²", iv.SpesaDichiarata/d.SuperficieMQ, cmax)
			}
		}
	}
}

func controllaBiomassa(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Biomassa
	if d == nil {
		r.errore("dati tecnici generatore a biomassa mancanti")
		return
	}
	if d.PotenzaKW <= 0 || d.PotenzaKW > 2000 {
		r.errore("potenza %.1f kW fuori dall'intervallo ammesso", d.PotenzaKW)
	}
	if d.ClasseEmissioni < tab.Efficienze.ClasseEmissioniMinima {
		r.errore("classe emissiva %d stelle sotto la minima di %d stelle", d.ClasseEmissioni, tab.Efficienze.ClasseEmissioniMinima)
	}
	if d.Rendimento < tab.Efficienze.RendimentoMinimoBiomassa {
		r.errore("rendimento %.1f%% sotto il minimo %.0f%%", d.Rendimento, tab.Efficienze.RendimentoMinimoBiomassa)
	}
	if d.ClasseEmissioni == 4 {
		r.suggerisci("un generatore 5 stelle aumenta il coefficiente premiante da 1,2 a 1,5")
	}
	if iv.Zona == models.ZonaA || iv.Zona == models.ZonaB {
		r.avviso("zone climatiche calde: poche ore di utilizzo, incentivo ridotto")
	}
}

func controllaSolareTermico(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.SolareTermico
	if d == nil {
		r.errore("dati tecnici solare termico mancanti")
		return
	}
	if d.SuperficieLordaMQ <= 0 || d.SuperficieLordaMQ > 2500 {
		r.errore("superficie lorda %.1f m² fuori dall'intervallo ammesso (0-2500 m²)", d.SuperficieLordaMQ)
	}
	if !d.SolarKeymark {
		r.errore("certificazione Solar Keymark obbligatoria assente")
	}
	if d.SuperficieLordaMQ > 0 && iv.SpesaDichiarata/d.SuperficieLordaMQ > costoIndicativoSolareMQ {
		r.avviso("costo specifico %.0f €/m² oltre la soglia indicativa di %d €/m²", iv.SpesaDichiarata/d.SuperficieLordaMQ, costoIndicativoSolareMQ)
	}
}

func controllaFotovoltaico(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Fotovoltaico
	if d == nil {
		r.errore("dati tecnici fotovoltaico mancanti")
		return
	}
	if d.PotenzaKW <= 0 {
		r.errore("potenza fotovoltaica non positiva")
	}
	if d.CapacitaAccumuloKWh < 0 {
		r.errore("capacità di accumulo negativa")
	}
	r.suggerisci("il fotovoltaico è incentivabile solo in abbinamento a una pompa di calore elettrica idonea")
}

func controllaColonnine(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Colonnine
	if d == nil {
		r.errore("dati tecnici infrastruttura di ricarica mancanti")
		return
	}
	if d.NumeroPunti < 1 {
		r.errore("numero punti di ricarica inferiore a 1")
	}
	if d.PotenzaKW <= 0 {
		r.errore("potenza di ricarica non positiva")
	}
	r.suggerisci("le colonnine sono incentivabili solo in abbinamento a una pompa di calore idonea")
}

func controllaScaldacqua(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Scaldacqua
	if d == nil {
		r.errore("dati tecnici scaldacqua a pompa di calore mancanti")
		return
	}
	if d.CapacitaLitri <= 0 {
		r.errore("capacità dell'accumulo non positiva")
	}
	if d.COP < tab.Efficienze.COPMinimoScaldacqua {
		r.errore("COP %.2f sotto il minimo %.2f", d.COP, tab.Efficienze.COPMinimoScaldacqua)
	}
	massimale, err := tab.MassimaleScaldacqua(d.ClasseEnergetica, d.CapacitaLitri)
	if err != nil {
		r.errore("classe energetica %q non ammissibile", d.ClasseEnergetica)
		return
	}
	if 0.40*iv.SpesaDichiarata > massimale {
		r.avviso("l'incentivo calcolato supererebbe il massimale di %.0f € e sarà limitato", massimale)
	}
}

func controllaIlluminazione(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Illuminazione
	if d == nil {
		r.errore("dati tecnici illuminazione mancanti")
		return
	}
	if iv.Edificio != models.NonResidenziale {
		r.errore("il rifacimento dell'illuminazione è ammesso solo su edifici non residenziali")
	}
	if d.PotenzaInstallataKW <= 0 {
		r.errore("potenza installata non positiva")
	}
	if d.EfficienzaLmW < tab.Efficienze.EfficienzaMinimaIlluminazione {
		r.errore("efficienza luminosa %.0f lm/W sotto il minimo %.0f lm/W", d.EfficienzaLmW, tab.Efficienze.EfficienzaMinimaIlluminazione)
	}
}

func controllaSchermature(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Schermature
	if d == nil {
		r.errore("dati tecnici schermature solari mancanti")
		return
	}
	if d.SuperficieMQ <= 0 {
		r.errore("superficie delle schermature non positiva")
	}
	if d.FattoreGtot <= 0 {
		r.errore("fattore gtot non dichiarato")
	} else if d.FattoreGtot > tab.Efficienze.GtotMassimo {
		r.errore("fattore gtot %.2f oltre il massimo %.2f", d.FattoreGtot, tab.Efficienze.GtotMassimo)
	}
	if d.SuperficieMQ > 0 {
		if cmax, err := tab.MassimaleUnitario(models.Schermature, "mq"); err == nil {
			if iv.SpesaDichiarata/d.SuperficieMQ > cmax {
				r.avviso("costo unitario %.0f €/m² oltre il massimale di %.0f €/m²", iv.SpesaDichiarata/d.SuperficieMQ, cmax)
			}
		}
	}
}

func controllaAutomation(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Automation
	if d == nil {
		r.errore("dati tecnici building automation mancanti")
		return
	}
	if iv.Edificio != models.NonResidenziale {
		r.errore("i sistemi di building automation sono ammessi solo su edifici non residenziali")
	}
	if d.SuperficieUtileMQ <= 0 {
		r.errore("superficie utile non positiva")
	}
	switch d.ClasseBACS {
	case "A", "B":
	case "C":
		r.avviso("classe BACS C: prestazione minima, valutare l'aggiornamento alla classe B")
	default:
		r.errore("classe BACS %q non riconosciuta", d.ClasseBACS)
	}
}

func controllaIbrido(iv models.Intervento, tab *refdata.Tabelle, r *rapporto) {
	d := iv.Ibrido
	if d == nil {
		r.errore("dati tecnici sistema ibrido mancanti")
		return
	}
	if d.PotenzaKW <= 0 || d.PotenzaKW > 2000 {
		r.errore("potenza %.1f kW fuori dall'intervallo ammesso", d.PotenzaKW)
	}
	etaMin, err := tab.EtaSMinima("ibrido")
	if err == nil && d.EtaS < etaMin {
		r.errore("efficienza stagionale %.0f%% sotto la minima %.0f%%", d.EtaS, etaMin)
	}
	scopMin, err := tab.SCOPMinimo("ibrido")
	if err == nil && d.SCOP < scopMin {
		r.errore("SCOP %.2f sotto il minimo %.2f", d.SCOP, scopMin)
	}
}
