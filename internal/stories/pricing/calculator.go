package pricing

import (
	"context"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
)

// Posting is the profit one agent earns from a single purchase.
type Posting struct {
	AgentID int64
	Profit  int64
}

// Factor is the buyer-facing price breakdown shown before confirmation.
type Factor struct {
	BasePrice  int64
	FinalPrice int64
	Postings   []Posting
}

// Quote applies the chain's markups to base. The chain is ordered root first,
// direct agent of the buyer last; markups are applied walking from the direct
// agent up toward the root, each ancestor marking up the already-marked-up
// price. The direction is load-bearing: root-first application would charge a
// different final price.
//
// The direct agent's step uses its UserPercent when the payer is a plain
// end-user. Every step prefers the SpecialPercent the agent's parent pinned
// on it over its own agent-facing percent.
func Quote(base int64, chain []*agents.Agent, payerIsAgent bool) (*Factor, error) {
	if len(chain) == 0 {
		return nil, apperr.BusinessRule("زنجیره نمایندگی خالی است")
	}

	factor := &Factor{BasePrice: base, FinalPrice: base}

	for i := len(chain) - 1; i >= 0; i-- {
		agent := chain[i]

		pct := effectivePercent(agent, i == len(chain)-1 && !payerIsAgent)
		delta := factor.FinalPrice * pct / 100

		factor.FinalPrice += delta
		factor.Postings = append(factor.Postings, Posting{
			AgentID: agent.ID,
			Profit:  delta,
		})
	}

	return factor, nil
}

func effectivePercent(agent *agents.Agent, endUserStep bool) int64 {
	if agent.SpecialPercent != 0 {
		return agent.SpecialPercent
	}
	if endUserStep {
		return agent.UserPercent
	}
	return agent.AgentPercent
}

type agentChain interface {
	AncestorChain(ctx context.Context, agentID int64) ([]*agents.Agent, error)
}

// Service quotes prices for a buyer by resolving its agent chain first.
type Service struct {
	agents agentChain
}

func NewService(agents agentChain) *Service {
	return &Service{agents: agents}
}

// QuoteForAgent prices a purchase made by a user enrolled under agentID.
func (s *Service) QuoteForAgent(ctx context.Context, agentID int64, base int64, payerIsAgent bool) (*Factor, error) {
	chain, err := s.agents.AncestorChain(ctx, agentID)
	if err != nil {
		return nil, err
	}
	return Quote(base, chain, payerIsAgent)
}
