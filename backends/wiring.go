package backends

import (
	"fmt"
	"log/slog"

	"github.com/jainds/agentic-ai-mcp-workflows-sub001/capability"
	"github.com/jainds/agentic-ai-mcp-workflows-sub001/config"
)

// memoryConstructors maps provider names to their in-process fixture
// implementations.
var memoryConstructors = map[string]func() capability.Provider{
	"customer-service":  NewCustomerService,
	"policy-service":    NewPolicyService,
	"claims-service":    NewClaimsService,
	"billing-service":   NewBillingService,
	"quote-service":     NewQuoteService,
	"knowledge-service": NewKnowledgeService,
}

// BuildRegistry constructs a capability registry from a provider table.
// Memory providers bind the in-process fixtures by name; nats providers
// forward to their configured subject over conn. conn may be nil when the
// table contains no nats entries.
func BuildRegistry(providers []config.ProviderConfig, conn capability.NATSConn, logger *slog.Logger) (*capability.Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}

	reg := capability.NewRegistry()

	for _, pc := range providers {
		var provider capability.Provider

		switch pc.Kind {
		case config.ProviderKindMemory:
			ctor, ok := memoryConstructors[pc.Name]
			if !ok {
				return nil, fmt.Errorf("no in-memory backend for provider %s", pc.Name)
			}
			provider = ctor()

		case config.ProviderKindNATS:
			if conn == nil {
				return nil, fmt.Errorf("provider %s requires a nats connection", pc.Name)
			}
			opts := []capability.NATSProviderOption{capability.WithNATSLogger(logger)}
			if pc.Timeout > 0 {
				opts = append(opts, capability.WithInvokeTimeout(pc.Timeout))
			}
			provider = capability.NewNATSProvider(pc.Name, pc.Subject, conn, opts...)

		default:
			return nil, fmt.Errorf("provider %s: unknown kind %q", pc.Name, pc.Kind)
		}

		reg.Register(provider)
		if len(pc.AllowActions) > 0 {
			reg.SetAllowlist(pc.Name, pc.AllowActions)
		}
	}

	return reg, nil
}
