// Package resolver turns raw user input into a reply.
//
// Resolution runs in a fixed priority order: arithmetic expressions first,
// then the keyword intents, then the remote advice endpoint. Any failure on
// the way, including a panic, yields a reply from the default category, so
// callers always receive conversational text.
package resolver

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/diogo/chatbot/internal/advice"
	apierrors "github.com/diogo/chatbot/internal/errors"
	"github.com/diogo/chatbot/internal/logging"
	"github.com/diogo/chatbot/internal/responses"
)

// Resolution describes how a reply was produced
type Resolution struct {
	Category responses.Category
	Text     string
	// Fallback is set when the reply came from the default category because
	// the advice endpoint or the resolver itself failed.
	Fallback error
}

// Resolver computes replies. It is safe for concurrent use.
type Resolver struct {
	catalog    *responses.Catalog
	advice     advice.Fetcher
	picker     responses.Picker
	thinkDelay time.Duration
	logger     *zap.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithCatalog sets the reply catalog
func WithCatalog(c *responses.Catalog) Option {
	return func(r *Resolver) {
		r.catalog = c
	}
}

// WithAdvice sets the fallback source for unmatched input. Without one,
// unmatched input gets a default reply.
func WithAdvice(f advice.Fetcher) Option {
	return func(r *Resolver) {
		r.advice = f
	}
}

// WithPicker sets the random source used to choose among variants
func WithPicker(p responses.Picker) Option {
	return func(r *Resolver) {
		r.picker = &lockedPicker{p: p}
	}
}

// WithThinkingDelay sets the pause taken before each resolution
func WithThinkingDelay(d time.Duration) Option {
	return func(r *Resolver) {
		r.thinkDelay = d
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver over the default catalog with no advice source
func New(opts ...Option) *Resolver {
	r := &Resolver{
		catalog: responses.DefaultCatalog(),
		picker:  &lockedPicker{p: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrNop(r.logger)
	return r
}

// Classify returns the category the input resolves to, without computing a
// reply. Input that matches nothing classifies as Advice.
func Classify(raw string) responses.Category {
	lowered := strings.ToLower(raw)
	if _, ok := parseExpression(lowered); ok {
		return responses.Math
	}
	if cat, ok := matchIntent(lowered); ok {
		return cat
	}
	return responses.Advice
}

// Resolve returns the reply for raw. It never fails.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	return r.Explain(ctx, raw).Text
}

// Explain resolves raw and reports which path produced the reply
func (r *Resolver) Explain(ctx context.Context, raw string) (res Resolution) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("resolver panic", zap.Any("panic", p))
			res = Resolution{
				Category: responses.Default,
				Text:     r.catalog.Pick(responses.Default, r.picker),
				Fallback: fmt.Errorf("resolver panic: %v", p),
			}
		}
	}()

	r.think(ctx)

	lowered := strings.ToLower(raw)

	if expr, ok := parseExpression(lowered); ok {
		return Resolution{Category: responses.Math, Text: expr.answer()}
	}

	if cat, ok := matchIntent(lowered); ok {
		r.logger.Debug("intent matched", zap.String("category", string(cat)))
		return Resolution{Category: cat, Text: r.catalog.Pick(cat, r.picker)}
	}

	return r.fromAdvice(ctx)
}

// fromAdvice queries the advice source, falling back to a default reply
func (r *Resolver) fromAdvice(ctx context.Context) Resolution {
	if r.advice == nil {
		return Resolution{
			Category: responses.Default,
			Text:     r.catalog.Pick(responses.Default, r.picker),
		}
	}

	text, err := r.advice.Fetch(ctx)
	if err == nil && strings.TrimSpace(text) == "" {
		err = apierrors.ErrNoContent
	}
	if err != nil {
		r.logger.Warn("advice unavailable, using default reply",
			zap.String("kind", apierrors.Kind(err)),
			zap.Error(err),
		)
		return Resolution{
			Category: responses.Default,
			Text:     r.catalog.Pick(responses.Default, r.picker),
			Fallback: err,
		}
	}

	return Resolution{Category: responses.Advice, Text: text}
}

// think waits out the thinking delay. Cancellation ends the wait early but
// resolution still completes.
func (r *Resolver) think(ctx context.Context) {
	if r.thinkDelay <= 0 {
		return
	}
	t := time.NewTimer(r.thinkDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// lockedPicker serialises access to a Picker; *rand.Rand is not safe for
// concurrent use.
type lockedPicker struct {
	mu sync.Mutex
	p  responses.Picker
}

func (l *lockedPicker) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Intn(n)
}
