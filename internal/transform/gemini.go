package transform

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

// SystemInstruction frames the model as a copy editor returning bare markdown.
const SystemInstruction = "You are an expert technical editor. Output ONLY the updated Markdown. " +
	"Do not add conversational filler. Preserve the original meaning but improve grammar, flow, and formatting."

// generateFunc sends one prompt and returns the response text.
type generateFunc func(ctx context.Context, prompt string) (string, error)

// Gemini calls the Gemini API. Without an API key it is a logged no-op.
type Gemini struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	Log     *slog.Logger

	generate generateFunc
}

func (g *Gemini) logger() *slog.Logger {
	if g.Log != nil {
		return g.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Configured reports whether a credential is present.
func (g *Gemini) Configured() bool { return strings.TrimSpace(g.APIKey) != "" }

// Prompt builds the request body sent alongside the system instruction.
func Prompt(content, instruction string) string {
	return "Request: " + instruction + "\n\nContent:\n" + content
}

func (g *Gemini) Transform(ctx context.Context, content, instruction string) (string, error) {
	if !g.Configured() {
		g.logger().Warn("gemini api key is missing; returning content unchanged")
		return content, nil
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	gen := g.generate
	if gen == nil {
		gen = g.callAPI
	}
	start := time.Now()
	text, err := gen(ctx, Prompt(content, instruction))
	if err != nil {
		g.logger().Error("error calling gemini api", "model", g.model(), "err", err)
		return "", err
	}
	g.logger().Info("gemini transform complete", "model", g.model(), "dur", time.Since(start))
	if text == "" {
		return content, nil
	}
	return text, nil
}

func (g *Gemini) model() string {
	if strings.TrimSpace(g.Model) == "" {
		return DefaultModel
	}
	return g.Model
}

func (g *Gemini) callAPI(ctx context.Context, prompt string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  g.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", err
	}
	resp, err := client.Models.GenerateContent(ctx, g.model(), genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
