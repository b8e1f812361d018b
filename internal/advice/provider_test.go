// internal/advice/provider_test.go
package advice

import (
	"context"
	"errors"
	"testing"

	"vitacoach/adherence-app/internal/config"
)

func TestNewProvider(t *testing.T) {
	t.Run("mock provider refuses to generate advice", func(t *testing.T) {
		p := NewProvider(config.AdviceConfig{Provider: "mock"})

		result, err := p.GenerateAdvice(context.Background(), sampleRequest())
		if !errors.Is(err, ErrAdviceDisabled) {
			t.Fatalf("err = %v, want ErrAdviceDisabled", err)
		}
		if result != nil {
			t.Fatalf("result = %+v, want nil; the mock must never fabricate advice", result)
		}
	})

	t.Run("unknown provider values fall back to the mock", func(t *testing.T) {
		p := NewProvider(config.AdviceConfig{Provider: "gpt5-superengine"})
		if _, err := p.GenerateAdvice(context.Background(), sampleRequest()); !errors.Is(err, ErrAdviceDisabled) {
			t.Fatalf("err = %v, want ErrAdviceDisabled", err)
		}
	})

	t.Run("openai without an API key falls back to the mock", func(t *testing.T) {
		p := NewProvider(config.AdviceConfig{Provider: "openai"})
		if _, err := p.GenerateAdvice(context.Background(), sampleRequest()); !errors.Is(err, ErrAdviceDisabled) {
			t.Fatalf("err = %v, want ErrAdviceDisabled", err)
		}
	})
}
