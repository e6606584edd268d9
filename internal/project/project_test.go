package project

import (
	"math"
	"strings"
	"testing"

	"contotermico/internal/models"
	"contotermico/internal/refdata"
	"contotermico/internal/scheduler"
)

func pompaIdonea(soggetto models.TipoSoggetto, edificio models.CategoriaEdificio) models.Intervento {
	return models.Intervento{
		Codice:          models.PompaDiCalore,
		Soggetto:        soggetto,
		Edificio:        edificio,
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

func solareIdoneo(soggetto models.TipoSoggetto, edificio models.CategoriaEdificio) models.Intervento {
	return models.Intervento{
		Codice:          models.SolareTermico,
		Soggetto:        soggetto,
		Edificio:        edificio,
		Zona:            models.ZonaE,
		SpesaDichiarata: 9000,
		SolareTermico: &models.DatiSolareTermico{
			Tipo:              models.CollettorePiano,
			SuperficieLordaMQ: 10,
			SolarKeymark:      true,
		},
	}
}

func fotovoltaicoAbbinato(soggetto models.TipoSoggetto, edificio models.CategoriaEdificio) models.Intervento {
	return models.Intervento{
		Codice:          models.Fotovoltaico,
		Soggetto:        soggetto,
		Edificio:        edificio,
		Zona:            models.ZonaE,
		SpesaDichiarata: 45000,
		Fotovoltaico:    &models.DatiFotovoltaico{PotenzaKW: 30},
	}
}

func circa(t *testing.T, ottenuto, atteso float64, contesto string) {
	t.Helper()
	if math.Abs(ottenuto-atteso) > 0.01 {
		t.Errorf("%s: atteso %.2f, ottenuto %.2f", contesto, atteso, ottenuto)
	}
}

func TestComponi_TettoDelTrainante(t *testing.T) {
	// Il fotovoltaico da solo varrebbe 9.000 € (20% di 45.000 €), ma non
	// può superare l'incentivo della pompa di calore trainante.
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
		fotovoltaicoAbbinato(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	var fv *models.VoceProgetto
	for i := range progetto.Voci {
		if progetto.Voci[i].Intervento.Codice == models.Fotovoltaico {
			fv = &progetto.Voci[i]
		}
	}
	if fv == nil {
		t.Fatal("voce fotovoltaico assente dal progetto")
	}
	inc := fv.Incentivi[models.ContoTermico]
	circa(t, inc.ImportoNominale, 5215.91, "fotovoltaico limitato al trainante")
	if inc.MassimaleApplicato == "" {
		t.Error("il tetto del trainante va dichiarato nel risultato")
	}
	circa(t, progetto.IncentivoBase[models.ContoTermico], 10431.82, "base conto termico del progetto")
}

func TestComponi_TrainatoPrimaDelTrainante(t *testing.T) {
	// L'ordine di inserimento non conta: il trainante viene composto prima.
	inOrdine, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
		fotovoltaicoAbbinato(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	invertito, err := Componi([]models.Intervento{
		fotovoltaicoAbbinato(models.Privato, models.Residenziale),
		pompaIdonea(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione con ordine invertito: %v", err)
	}
	circa(t, invertito.IncentivoBase[models.ContoTermico],
		inOrdine.IncentivoBase[models.ContoTermico], "base indipendente dall'ordine di ingresso")
}

func TestComponi_TrainanteAssente(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		fotovoltaicoAbbinato(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	voce := progetto.Voci[0]
	if voce.Verifica.Idoneo {
		t.Error("fotovoltaico senza trainante non può essere idoneo")
	}
	trovato := false
	for _, e := range voce.Verifica.Errori {
		if strings.Contains(e, "trainante") {
			trovato = true
		}
	}
	if !trovato {
		t.Errorf("atteso errore sul trainante assente, ottenuti %v", voce.Verifica.Errori)
	}
	circa(t, progetto.IncentivoBase[models.ContoTermico], 0, "nessun incentivo senza trainante")
}

func TestComponi_TrainanteNonIdoneo(t *testing.T) {
	pompa := pompaIdonea(models.Privato, models.Residenziale)
	pompa.PompaCalore.EtaS = 90 // sotto la minima: la pompa non è idonea
	progetto, err := Componi([]models.Intervento{
		pompa,
		fotovoltaicoAbbinato(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	for _, voce := range progetto.Voci {
		if voce.Verifica.Idoneo {
			t.Errorf("%s non doveva risultare idoneo", voce.Intervento.Codice)
		}
	}
}

func TestAggrega_BonusMultiIntervento(t *testing.T) {
	// Impresa con due interventi Titolo II: +5% su tutta la base.
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Impresa, models.Residenziale),
		solareIdoneo(models.Impresa, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	base := progetto.IncentivoBase[models.ContoTermico]
	circa(t, base, 8615.91, "base conto termico") // 5.215,91 + 3.400,00
	bonus := progetto.Bonus[models.ContoTermico]
	if len(bonus) != 1 {
		t.Fatalf("attesa una maggiorazione, ottenute %d", len(bonus))
	}
	circa(t, bonus[0].Importo, 430.80, "maggiorazione 5%")
	circa(t, progetto.IncentivoFinale[models.ContoTermico], 9046.71, "finale con maggiorazione")
}

func TestAggrega_NessunBonusPerIlPrivato(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
		solareIdoneo(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	if len(progetto.Bonus[models.ContoTermico]) != 0 {
		t.Errorf("il privato non accede alla maggiorazione multi-intervento: %v", progetto.Bonus[models.ContoTermico])
	}
	circa(t, progetto.IncentivoFinale[models.ContoTermico],
		progetto.IncentivoBase[models.ContoTermico], "senza maggiorazioni finale = base")
}

func TestAggrega_BonusRiduzioneEnergia(t *testing.T) {
	riduzione := 0.45
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{RiduzioneEnergia: &riduzione, HaAPE: true})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	bonus := progetto.Bonus[models.ContoTermico]
	if len(bonus) != 1 {
		t.Fatalf("attesa la maggiorazione del 15%%, ottenute %d voci", len(bonus))
	}
	circa(t, bonus[0].Importo, 782.39, "maggiorazione 15% di 5.215,91 €")
	circa(t, progetto.IncentivoFinale[models.ContoTermico], 5998.30, "finale con maggiorazione")
}

func TestAggrega_MaggiorazioniAdditive(t *testing.T) {
	// Entrambe le maggiorazioni attive: 5% e 15% calcolate sulla base,
	// mai composte tra loro.
	riduzione := 0.45
	interventi := []models.Intervento{
		pompaIdonea(models.Impresa, models.Residenziale),
		solareIdoneo(models.Impresa, models.Residenziale),
	}
	progetto, err := Componi(interventi, refdata.Default(), Opzioni{RiduzioneEnergia: &riduzione, HaAPE: true})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	if len(progetto.Bonus[models.ContoTermico]) != 2 {
		t.Fatalf("attese due maggiorazioni, ottenute %d", len(progetto.Bonus[models.ContoTermico]))
	}
	// base 8.615,91 + 5% (430,80) + 15% (1.292,39)
	circa(t, progetto.IncentivoFinale[models.ContoTermico], 10339.10, "maggiorazioni additive")
}

func TestAggrega_MaggiorazioniMonotone(t *testing.T) {
	riduzione := 0.45
	interventi := []models.Intervento{
		pompaIdonea(models.Impresa, models.Residenziale),
		solareIdoneo(models.Impresa, models.Residenziale),
	}
	finale := func(opz Opzioni) float64 {
		t.Helper()
		progetto, err := Componi(interventi, refdata.Default(), opz)
		if err != nil {
			t.Fatalf("composizione: %v", err)
		}
		return progetto.IncentivoFinale[models.ContoTermico]
	}
	soloMulti := finale(Opzioni{})
	conRiduzione := finale(Opzioni{RiduzioneEnergia: &riduzione, HaAPE: true})
	if conRiduzione <= soloMulti {
		t.Errorf("aggiungere una maggiorazione non può ridurre il finale: %.2f vs %.2f", conRiduzione, soloMulti)
	}
	base := 8615.91
	if soloMulti < base {
		t.Errorf("finale %.2f sotto la base %.2f", soloMulti, base)
	}
}

func TestAggrega_BonusRiduzioneSenzaAPE(t *testing.T) {
	riduzione := 0.45
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{RiduzioneEnergia: &riduzione})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	if len(progetto.Bonus[models.ContoTermico]) != 0 {
		t.Error("senza APE la riduzione attestata non dà maggiorazione")
	}
}

func TestAggrega_MassimaleProgettoErodeSoloIBonus(t *testing.T) {
	riduzione := 0.45
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{RiduzioneEnergia: &riduzione, HaAPE: true, MassimaleProgetto: 5500})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	// base 5.215,91 + 15% = 5.998,30, limitato a 5.500 €
	circa(t, progetto.IncentivoFinale[models.ContoTermico], 5500, "massimale di progetto")
	// la detrazione (base 9.750 €) supera già il massimale: la base resta intera
	circa(t, progetto.IncentivoFinale[models.DetrazioneFiscale],
		progetto.IncentivoBase[models.DetrazioneFiscale], "il massimale non riduce mai la base")
	for schema, finale := range progetto.IncentivoFinale {
		if finale < progetto.IncentivoBase[schema]-0.01 {
			t.Errorf("schema %s: finale %.2f sotto la base %.2f", schema, finale, progetto.IncentivoBase[schema])
		}
	}
}

func TestPiani_UnioneDelleScadenze(t *testing.T) {
	// Pompa di calore sopra soglia (2 annualità) e solare sotto soglia
	// (rata unica a conclusione): tre scadenze nel piano unito.
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
		solareIdoneo(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	piano := progetto.Piani[models.ContoTermico]
	if len(piano.Rate) != 3 {
		t.Fatalf("attese 3 scadenze, ottenute %d", len(piano.Rate))
	}
	if piano.Rate[0].Evento.Tipo != models.EventoConclusione {
		t.Errorf("la conclusione precede le annualità, ottenuto %q", piano.Rate[0].Evento.Tipo)
	}
	circa(t, piano.Rate[0].Importo, 3400, "rata unica del solare")
	circa(t, piano.Totale(), progetto.IncentivoFinale[models.ContoTermico], "somma del piano unito")
}

func TestPiani_BonusSullUltimaRata(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Impresa, models.Residenziale),
		solareIdoneo(models.Impresa, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	piano := progetto.Piani[models.ContoTermico]
	circa(t, piano.Totale(), progetto.IncentivoFinale[models.ContoTermico], "il piano include la maggiorazione")
	ultima := piano.Rate[len(piano.Rate)-1]
	// ultima annualità 2.607,95 € (il resto di arrotondamento resta
	// nell'ultima rata) più la maggiorazione di 430,80 €
	circa(t, ultima.Importo, 3038.75, "maggiorazione sull'ultima rata")
}

func TestPiani_PrenotazionePerIlCondominio(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Condominio, models.Residenziale),
	}, refdata.Default(), Opzioni{Modalita: scheduler.ModalitaPrenotazione})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	piano := progetto.Piani[models.ContoTermico]
	if len(piano.Rate) != 2 {
		t.Fatalf("attesi acconto e saldo, ottenute %d rate", len(piano.Rate))
	}
	if piano.Rate[0].Evento.Tipo != models.EventoAmmissione {
		t.Errorf("l'acconto si eroga all'ammissione, ottenuto %q", piano.Rate[0].Evento.Tipo)
	}
	circa(t, piano.Totale(), progetto.IncentivoFinale[models.ContoTermico], "somma del piano in prenotazione")
}

func TestPiani_PrenotazioneNegataAlPrivato(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{Modalita: scheduler.ModalitaPrenotazione})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	for _, rata := range progetto.Piani[models.ContoTermico].Rate {
		if rata.Evento.Tipo == models.EventoAmmissione {
			t.Error("il privato non riceve acconti in ammissione")
		}
	}
}

func TestPiani_RataUnicaPerLaPA(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.PubblicaAmministrazione, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	piano := progetto.Piani[models.ContoTermico]
	if len(piano.Rate) != 1 {
		t.Fatalf("la PA riceve la rata unica anche sopra soglia, ottenute %d rate", len(piano.Rate))
	}
	if _, ok := progetto.Piani[models.DetrazioneFiscale]; ok {
		t.Error("la PA non accede alla detrazione fiscale")
	}
}

func TestComponi_ProgettoVuoto(t *testing.T) {
	if _, err := Componi(nil, refdata.Default(), Opzioni{}); err == nil {
		t.Error("un progetto senza interventi deve produrre un errore")
	}
}

func TestComponi_IdentificativoAssegnato(t *testing.T) {
	progetto, err := Componi([]models.Intervento{
		pompaIdonea(models.Privato, models.Residenziale),
	}, refdata.Default(), Opzioni{})
	if err != nil {
		t.Fatalf("composizione: %v", err)
	}
	if progetto.ID == "" {
		t.Error("identificativo di progetto assente")
	}
}
