package worker

// email_worker.go processes the welcome emails queued on registration.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
)

// BienvenidaPayload is the payload of a JobBienvenida job.
type BienvenidaPayload struct {
	Nombre string `json:"nombre"`
	Correo string `json:"correo"`
}

// Remitente sends the welcome email; *infra.Mailer implements it.
type Remitente interface {
	Configurado() bool
	EnviarBienvenida(nombre, correo string) error
}

// EmailWorker processes JobBienvenida jobs.
type EmailWorker struct {
	mailer Remitente
}

// NewEmailWorker creates an EmailWorker with the provided SMTP mailer.
func NewEmailWorker(mailer Remitente) *EmailWorker {
	return &EmailWorker{mailer: mailer}
}

func (w *EmailWorker) Process(_ context.Context, raw json.RawMessage) error {
	var payload BienvenidaPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		// retrying a malformed payload cannot help
		log.Error().Err(err).Str("component", "email_worker").Msg("invalid payload")
		return nil
	}
	if payload.Correo == "" {
		log.Warn().Str("component", "email_worker").Msg("empty correo, skipping")
		return nil
	}
	// without SMTP a retry cannot succeed either
	if !w.mailer.Configurado() {
		log.Warn().Str("component", "email_worker").Str("to", payload.Correo).Msg("SMTP not configured, bienvenida skipped")
		return nil
	}

	if err := w.mailer.EnviarBienvenida(payload.Nombre, payload.Correo); err != nil {
		return fmt.Errorf("email_worker: %w", err)
	}
	log.Info().Str("component", "email_worker").Str("to", payload.Correo).Msg("bienvenida sent")
	return nil
}
