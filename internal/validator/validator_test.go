package validator

import (
	"reflect"
	"testing"

	"contotermico/internal/models"
)

func pompaCaloreValida() models.Intervento {
	return models.Intervento{
		Codice:          models.PompaDiCalore,
		Soggetto:        models.Privato,
		Edificio:        models.Residenziale,
		Zona:            models.ZonaE,
		SpesaDichiarata: 15000,
		PompaCalore: &models.DatiPompaCalore{
			Tipo:          models.AriaAcqua,
			Alimentazione: models.AlimentazioneElettrica,
			PotenzaKW:     10,
			SCOP:          4.0,
			EtaS:          150,
		},
	}
}

func TestValida_PompaCaloreIdonea(t *testing.T) {
	v := Valida(pompaCaloreValida())
	if !v.Idoneo {
		t.Fatalf("pompa di calore conforme respinta: %v", v.Errori)
	}
	if v.Punteggio != 100 {
		t.Errorf("nessun avviso atteso, punteggio %d", v.Punteggio)
	}
	if len(v.Suggerimenti) == 0 {
		t.Error("in zona E atteso il suggerimento di abbinamento con isolamento")
	}
}

func TestValida_EfficienzaEsattamenteInSoglia(t *testing.T) {
	iv := pompaCaloreValida()
	iv.PompaCalore.EtaS = 110 // minima aria/acqua
	v := Valida(iv)
	if !v.Idoneo {
		t.Errorf("il valore esattamente in soglia deve passare: %v", v.Errori)
	}
}

func TestValida_EfficienzaSottoSoglia(t *testing.T) {
	iv := pompaCaloreValida()
	iv.PompaCalore.EtaS = 109.9
	v := Valida(iv)
	if v.Idoneo {
		t.Error("efficienza sotto la minima deve bloccare")
	}
	if v.Punteggio != 0 {
		t.Errorf("errore bloccante deve azzerare il punteggio, ottenuto %d", v.Punteggio)
	}
}

func TestValida_TuttiIControlliEseguiti(t *testing.T) {
	iv := pompaCaloreValida()
	iv.SpesaDichiarata = 0
	iv.PompaCalore.EtaS = 90
	iv.PompaCalore.SCOP = 2.0
	v := Valida(iv)
	if len(v.Errori) < 3 {
		t.Errorf("la batteria non deve fermarsi al primo errore: raccolti %d errori %v", len(v.Errori), v.Errori)
	}
}

func TestValida_AvvisoCostoElevato(t *testing.T) {
	iv := pompaCaloreValida()
	iv.SpesaDichiarata = 25000 // 2500 €/kW
	v := Valida(iv)
	if !v.Idoneo {
		t.Fatalf("il costo elevato non deve bloccare: %v", v.Errori)
	}
	if len(v.Avvisi) != 1 {
		t.Fatalf("atteso un avviso sul costo specifico, ottenuti %v", v.Avvisi)
	}
	if v.Punteggio != 90 {
		t.Errorf("un avviso vale 10 punti di penalità, punteggio %d", v.Punteggio)
	}
}

func TestValida_IsolamentoTrasmittanzaOltreLimite(t *testing.T) {
	iv := models.Intervento{
		Codice:          models.Isolamento,
		Soggetto:        models.Privato,
		Edificio:        models.Residenziale,
		Zona:            models.ZonaD,
		SpesaDichiarata: 48000,
		Isolamento: &models.DatiIsolamento{
			Struttura:    models.Copertura,
			SuperficieMQ: 600,
			Trasmittanza: 0.30, // limite copertura zona D: 0.26
		},
	}
	v := Valida(iv)
	if v.Idoneo {
		t.Error("trasmittanza oltre il limite di zona deve bloccare")
	}

	iv.Isolamento.Trasmittanza = 0.26 // esattamente al limite
	v = Valida(iv)
	if !v.Idoneo {
		t.Errorf("trasmittanza esattamente al limite deve passare: %v", v.Errori)
	}
}

func TestValida_BiomassaClasseEmissioni(t *testing.T) {
	iv := models.Intervento{
		Codice:          models.Biomassa,
		Soggetto:        models.Privato,
		Edificio:        models.Residenziale,
		Zona:            models.ZonaE,
		SpesaDichiarata: 9000,
		Biomassa: &models.DatiBiomassa{
			Tipo:            models.CaldaiaBiomassa,
			PotenzaKW:       25,
			ClasseEmissioni: 3,
			Rendimento:      88,
		},
	}
	v := Valida(iv)
	if v.Idoneo {
		t.Error("classe emissiva 3 stelle deve bloccare")
	}

	iv.Biomassa.ClasseEmissioni = 4
	v = Valida(iv)
	if !v.Idoneo {
		t.Errorf("classe 4 stelle deve passare: %v", v.Errori)
	}
	if len(v.Suggerimenti) == 0 {
		t.Error("con classe 4 atteso il suggerimento di passare a 5 stelle")
	}
}

func TestValida_SolareSenzaKeymark(t *testing.T) {
	iv := models.Intervento{
		Codice:          models.SolareTermico,
		Soggetto:        models.Privato,
		Edificio:        models.Residenziale,
		Zona:            models.ZonaC,
		SpesaDichiarata: 6000,
		SolareTermico: &models.DatiSolareTermico{
			Tipo:              models.CollettorePiano,
			SuperficieLordaMQ: 8,
			SolarKeymark:      false,
		},
	}
	v := Valida(iv)
	if v.Idoneo {
		t.Error("la certificazione Solar Keymark è obbligatoria")
	}
}

func TestValida_IlluminazioneSoloNonResidenziale(t *testing.T) {
	iv := models.Intervento{
		Codice:          models.Illuminazione,
		Soggetto:        models.Impresa,
		Edificio:        models.Residenziale,
		Zona:            models.ZonaD,
		SpesaDichiarata: 20000,
		Illuminazione: &models.DatiIlluminazione{
			PotenzaInstallataKW: 12,
			EfficienzaLmW:       110,
		},
	}
	v := Valida(iv)
	if v.Idoneo {
		t.Error("illuminazione su residenziale deve bloccare")
	}

	iv.Edificio = models.NonResidenziale
	v = Valida(iv)
	if !v.Idoneo {
		t.Errorf("illuminazione su non residenziale conforme respinta: %v", v.Errori)
	}
}

func TestValida_DatiTecniciMancanti(t *testing.T) {
	iv := models.Intervento{
		Codice:          models.Serramenti,
		Soggetto:        models.Privato,
		Edificio:        models.Residenziale,
		Zona:            models.ZonaD,
		SpesaDichiarata: 12000,
	}
	v := Valida(iv)
	if v.Idoneo {
		t.Error("intervento senza dati tecnici deve bloccare")
	}
}

func TestValida_CodiceSconosciuto(t *testing.T) {
	iv := pompaCaloreValida()
	iv.Codice = models.CodiceIntervento("caldaia_a_carbone")
	v := Valida(iv)
	if v.Idoneo {
		t.Error("codice non in catalogo deve bloccare")
	}
}

func TestValida_Deterministica(t *testing.T) {
	iv := pompaCaloreValida()
	iv.SpesaDichiarata = 25000
	prima := Valida(iv)
	seconda := Valida(iv)
	if !reflect.DeepEqual(prima, seconda) {
		t.Error("stessa richiesta, rapporti diversi")
	}
}
