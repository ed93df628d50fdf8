package llm

import (
	"context"
	"time"

	"github.com/abhisek/easypractice/internal/logger"
)

// LoggingProvider logs every request with its latency, token usage and
// estimated cost.
type LoggingProvider struct {
	inner  Provider
	vendor string
	log    *logger.Logger
}

func WithLogging(p Provider, vendor string, log *logger.Logger) Provider {
	if log == nil {
		log = logger.Nop()
	}
	return &LoggingProvider{inner: p, vendor: vendor, log: log}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	kv := []any{
		"provider", l.vendor,
		"model", l.inner.ModelID(),
		"purpose", PurposeFrom(ctx),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if req.Schema != nil {
		kv = append(kv, "schema", req.Schema.Name)
	}
	if err != nil {
		l.log.Warn("llm request failed", append(kv, "error", err)...)
		return nil, err
	}

	kv = append(kv,
		"served_by", resp.Model,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
	)
	if cost, ok := EstimateCost(resp.Model, resp.Usage); ok {
		kv = append(kv, "cost_usd", cost)
	}
	l.log.Info("llm request", kv...)
	l.log.Debug("llm response", "purpose", PurposeFrom(ctx), "content", string(resp.Content))
	return resp, nil
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}
