// Package advisor wraps the Gemini client with the farm-assistant prompt,
// retry policy and fallback replies. It never fails: callers always get
// usable text.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/shamba-labs/mazao/internal/retry"
)

const systemPrompt = `You are FarmAI, an agricultural assistant specialized in maize farming.
Provide concise, practical advice to farmers with these guidelines:

1. Focus specifically on maize/corn cultivation
2. Use simple language (primary school level)
3. Prioritize cost-effective methods
4. Recommend sustainable practices
5. Assume tropical climate if not specified
6. Provide actionable steps
7. Keep responses under 300 words`

// fallbacks are returned when the provider cannot be reached in time.
var fallbacks = []string{
	"I'm currently unable to access farming advice. Please try again later.",
	"Our maize farming experts are busy. For immediate help, contact your local agricultural extension officer.",
	"Network issues prevent me from responding. Here's a general tip: Ensure proper soil preparation before planting maize.",
	"I can't respond right now. Remember to test your soil pH before applying fertilizers.",
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	MaxAttempts    int
	AttemptTimeout time.Duration
	BackoffBase    time.Duration
}

func DefaultOptions() Options {
	return Options{
		MaxAttempts:    3,
		AttemptTimeout: 30 * time.Second,
		BackoffBase:    time.Second,
	}
}

type Advisor struct {
	llm    Generator
	policy retry.Policy
	logger *slog.Logger
}

func New(llm Generator, opts Options, logger *slog.Logger) *Advisor {
	return &Advisor{
		llm: llm,
		policy: retry.Policy{
			MaxAttempts: opts.MaxAttempts,
			Timeout:     opts.AttemptTimeout,
			Backoff:     retry.Exponential(opts.BackoffBase),
		},
		logger: logger,
	}
}

// Reply answers a farmer's question. Provider failures and timeouts are
// retried per the policy; once attempts are exhausted a fallback reply is
// returned instead of an error, so the returned text is always non-empty.
func (a *Advisor) Reply(ctx context.Context, question string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nQuestion: %s", systemPrompt, question)

	attempt := 0
	text, err := retry.Do(ctx, a.policy, func(ctx context.Context) (string, error) {
		attempt++
		out, err := a.llm.Generate(ctx, prompt)
		if err != nil {
			a.logger.Warn("gemini attempt failed", "attempt", attempt, "error", err)
			return "", err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			a.logger.Warn("gemini attempt returned empty text", "attempt", attempt)
			return "", fmt.Errorf("empty model reply")
		}
		return out, nil
	})
	if err != nil {
		a.logger.Error("all gemini attempts failed, using fallback", "attempts", attempt, "error", err)
		return fallbacks[rand.Intn(len(fallbacks))], nil
	}
	return text, nil
}
