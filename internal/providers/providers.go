package providers

import (
	"context"
)

// Config represents one vision-model invocation: a prompt plus the image the
// model should look at.
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	Image       []byte
	ImageMIME   string // e.g. "image/jpeg"; empty defaults to jpeg
}

// Provider defines the interface for a vision-capable LLM provider. The
// response is raw model text; callers parse out whatever structure the
// prompt asked for.
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}
