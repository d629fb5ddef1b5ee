package infra

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// ErrAsistenteNoConfigurado is returned when GENAI_API_KEY is empty.
var ErrAsistenteNoConfigurado = errors.New("asistente: GENAI_API_KEY no configurado")

// Generador produces a text answer for a prompt.
type Generador interface {
	Generar(ctx context.Context, prompt string) (string, error)
}

type geminiGenerador struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Generador backed by the Gemini API.
func NewGemini(ctx context.Context, apiKey, model string) (Generador, error) {
	if apiKey == "" {
		return nil, ErrAsistenteNoConfigurado
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("asistente: crear cliente genai: %w", err)
	}
	return &geminiGenerador{client: client, model: model}, nil
}

func (g *geminiGenerador) Generar(ctx context.Context, prompt string) (string, error) {
	res, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("asistente: generate content: %w", err)
	}
	return res.Text(), nil
}

// Asistente sends prompts through a circuit breaker so an unavailable API
// fails fast instead of piling up timeouts.
type Asistente struct {
	gen Generador
	cb  *CircuitBreaker
}

func NewAsistente(gen Generador, cb *CircuitBreaker) *Asistente {
	if cb == nil {
		cb = NewCircuitBreaker(DefaultCBConfig())
	}
	return &Asistente{gen: gen, cb: cb}
}

// Preguntar returns the model's answer to prompt.
func (a *Asistente) Preguntar(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("asistente: prompt vacío")
	}
	var respuesta string
	err := a.cb.Execute(ctx, func(ctx context.Context) error {
		r, err := a.gen.Generar(ctx, prompt)
		respuesta = r
		return err
	})
	if err != nil {
		log.Warn().Err(err).Str("component", "asistente").Str("breaker", a.cb.State().String()).Msg("pregunta fallida")
		return "", err
	}
	return respuesta, nil
}
