package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"contotermico/internal/config"
	"contotermico/internal/finance"
	"contotermico/internal/logger"
	"contotermico/internal/models"
	"contotermico/internal/project"
	"contotermico/internal/refdata"
	"contotermico/internal/scheduler"
	sentryutil "contotermico/internal/sentry"
)

// richiesta is the incoming project: interventions on the same building
// and composition parameters.
type richiesta struct {
	Interventi       []models.Intervento `json:"interventi"`
	RiduzioneEnergia *float64            `json:"riduzione_energia,omitempty"`
	HaAPE            bool                `json:"ha_ape"`
	Prenotazione     bool                `json:"prenotazione"`
	TassoSconto      *float64            `json:"tasso_sconto,omitempty"`
}

type risposta struct {
	Progetto  *models.Progetto `json:"progetto"`
	Confronto models.Confronto `json:"confronto"`
}

func main() {
	// Load configuration from .env and environment variables
	config.Load()

	// Initialize Sentry (non-blocking if SENTRY_DSN is empty)
	sentryutil.Init()
	defer sentryutil.Flush()

	if err := run(); err != nil {
		sentryutil.CaptureError(err, map[string]string{"fase": "composizione"})
		log.Fatalf("contotermico: %v", err)
	}
}

func run() error {
	input, err := leggiInput()
	if err != nil {
		return err
	}

	var req richiesta
	if err := json.Unmarshal(input, &req); err != nil {
		return fmt.Errorf("richiesta non interpretabile: %w", err)
	}

	opz := project.Opzioni{
		RiduzioneEnergia:  req.RiduzioneEnergia,
		HaAPE:             req.HaAPE,
		SogliaRataUnica:   config.Cfg.SogliaRataUnica,
		QuotaIntermedia:   config.Cfg.QuotaIntermedia,
		MassimaleProgetto: config.Cfg.MassimaleProgetto,
	}
	if req.Prenotazione {
		opz.Modalita = scheduler.ModalitaPrenotazione
	}

	progetto, err := project.Componi(req.Interventi, refdata.Default(), opz)
	if err != nil {
		return err
	}

	tasso := config.Cfg.TassoSconto
	if req.TassoSconto != nil {
		tasso = *req.TassoSconto
	}
	confronto, err := finance.Confronta(progetto, tasso)
	if err != nil {
		return err
	}

	logger.Info("progetto composto", map[string]interface{}{
		"id":         progetto.ID,
		"interventi": len(progetto.Voci),
		"preferito":  string(confronto.SchemaPreferito),
	})

	out, err := json.MarshalIndent(risposta{Progetto: progetto, Confronto: confronto}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func leggiInput() ([]byte, error) {
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			return nil, fmt.Errorf("lettura progetto: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("lettura da stdin: %w", err)
	}
	return data, nil
}
