package capability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// DefaultInvokeTimeout bounds a remote invocation when the caller's context
// carries no deadline of its own.
const DefaultInvokeTimeout = 10 * time.Second

// InvokeEnvelope is the wire format for a remote capability request.
type InvokeEnvelope struct {
	Action     string           `json:"action"`
	Parameters map[string]Value `json:"parameters,omitempty"`
}

// NATSConn is the subset of *nats.Conn the provider needs. Narrowing the
// dependency keeps the provider testable without a running server.
type NATSConn interface {
	RequestWithContext(ctx context.Context, subj string, data []byte) (*nats.Msg, error)
}

// NATSProvider invokes a remote capability service over NATS request/reply.
// The remote side is expected to reply with a JSON-encoded Response. All
// transport failures, including timeouts, surface as Fail responses so the
// executor's partial-failure policy applies.
type NATSProvider struct {
	name    string
	subject string
	conn    NATSConn
	timeout time.Duration
	logger  *slog.Logger
}

// NATSProviderOption configures a NATSProvider.
type NATSProviderOption func(*NATSProvider)

// WithInvokeTimeout overrides the default per-invocation timeout.
func WithInvokeTimeout(d time.Duration) NATSProviderOption {
	return func(p *NATSProvider) {
		p.timeout = d
	}
}

// WithNATSLogger sets the provider logger.
func WithNATSLogger(logger *slog.Logger) NATSProviderOption {
	return func(p *NATSProvider) {
		p.logger = logger
	}
}

// NewNATSProvider creates a provider that forwards invocations to subject.
func NewNATSProvider(name, subject string, conn NATSConn, opts ...NATSProviderOption) *NATSProvider {
	p := &NATSProvider{
		name:    name,
		subject: subject,
		conn:    conn,
		timeout: DefaultInvokeTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements Provider.
func (p *NATSProvider) Name() string { return p.name }

// Invoke implements Provider.
func (p *NATSProvider) Invoke(ctx context.Context, action string, params map[string]Value) (*Response, error) {
	payload, err := json.Marshal(InvokeEnvelope{Action: action, Parameters: params})
	if err != nil {
		return nil, fmt.Errorf("marshal invoke envelope: %w", err)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg, err := p.conn.RequestWithContext(ctx, p.subject, payload)
	if err != nil {
		p.logger.Warn("Capability request failed",
			"provider", p.name,
			"subject", p.subject,
			"action", action,
			"error", err)
		switch {
		case errors.Is(err, context.DeadlineExceeded), errors.Is(err, nats.ErrTimeout):
			return Fail(fmt.Sprintf("capability %s timed out on %s", p.name, action)), nil
		case errors.Is(err, nats.ErrNoResponders):
			return Fail(fmt.Sprintf("provider %s not available", p.name)), nil
		default:
			return Fail(fmt.Sprintf("capability %s transport error: %v", p.name, err)), nil
		}
	}

	var resp Response
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return Fail(fmt.Sprintf("capability %s returned malformed response", p.name)), nil
	}
	return &resp, nil
}
