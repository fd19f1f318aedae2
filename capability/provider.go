// Package capability defines the contract between the request pipeline and
// the backend services it orchestrates. Providers are addressed purely by
// name; the pipeline has no knowledge of whether an invocation crosses a
// process boundary.
package capability

import (
	"context"
)

// Response is the structured result of one provider invocation.
// Exactly one of Data/Error is meaningful, gated by Success.
type Response struct {
	Success bool             `json:"success"`
	Data    map[string]Value `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// OK builds a successful response carrying data.
func OK(data map[string]Value) *Response {
	return &Response{Success: true, Data: data}
}

// Fail builds a failed response carrying an error message.
func Fail(message string) *Response {
	return &Response{Success: false, Error: message}
}

// Provider executes named actions against a backend capability.
// Implementations must report operational failures (timeouts, unknown
// actions, backend errors) as a Fail response rather than an error return;
// the error return is reserved for invocation-level crashes the caller
// cannot interpret.
type Provider interface {
	// Name returns the provider identifier used for registry lookup.
	Name() string

	// Invoke executes an action with the given parameters.
	Invoke(ctx context.Context, action string, params map[string]Value) (*Response, error)
}

// Func adapts a plain function to the Provider interface.
type Func struct {
	ProviderName string
	Handler      func(ctx context.Context, action string, params map[string]Value) (*Response, error)
}

// Name implements Provider.
func (f *Func) Name() string { return f.ProviderName }

// Invoke implements Provider.
func (f *Func) Invoke(ctx context.Context, action string, params map[string]Value) (*Response, error) {
	return f.Handler(ctx, action, params)
}
