package llm

import "context"

// CompletionHook observes completion calls. Used by the watch layer to
// surface progress without the core knowing about transports.
type CompletionHook interface {
	Before(ctx context.Context, op, prompt string)
	After(ctx context.Context, op, text string, err error)
}

type ctxKeyOp struct{}

// WithHook wraps a Completer so every call passes through hook.
func WithHook(base Completer, hook CompletionHook) Completer {
	return &hooked{base: base, hook: hook}
}

type hooked struct {
	base Completer
	hook CompletionHook
}

func (h *hooked) Name() string { return h.base.Name() }
func (h *hooked) Close() error { return h.base.Close() }

func (h *hooked) Complete(ctx context.Context, prompt string) (string, error) {
	op := OpFrom(ctx)
	h.hook.Before(ctx, op, prompt)
	text, err := h.base.Complete(ctx, prompt)
	h.hook.After(ctx, op, text, err)
	return text, err
}

// WithOp tags the context with the logical operation issuing completions
// (e.g. "generate", "refine", "plan_create").
func WithOp(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, ctxKeyOp{}, op)
}

// OpFrom returns the operation tag stored in the context.
func OpFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyOp{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
