package pricing

import (
	"testing"

	"digiseller/internal/stories/agents"
	"digiseller/internal/stories/apperr"
)

func TestQuoteWalksChainLeafFirst(t *testing.T) {
	chain := []*agents.Agent{
		{ID: 1, AgentPercent: 10, UserPercent: 50},
		{ID: 5, AgentPercent: 20, UserPercent: 20},
	}

	// End-user purchase: direct agent applies UserPercent first, then the
	// root marks up the already-marked-up price.
	factor, err := Quote(1000, chain, false)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if factor.FinalPrice != 1320 {
		t.Errorf("final price = %d, want 1320", factor.FinalPrice)
	}
	if len(factor.Postings) != 2 {
		t.Fatalf("postings = %d, want 2", len(factor.Postings))
	}
	if factor.Postings[0].AgentID != 5 || factor.Postings[0].Profit != 200 {
		t.Errorf("leaf posting = %+v, want agent 5 profit 200", factor.Postings[0])
	}
	if factor.Postings[1].AgentID != 1 || factor.Postings[1].Profit != 120 {
		t.Errorf("root posting = %+v, want agent 1 profit 120", factor.Postings[1])
	}
}

func TestQuoteAgentPayerUsesAgentPercent(t *testing.T) {
	chain := []*agents.Agent{
		{ID: 1, AgentPercent: 10, UserPercent: 50},
		{ID: 5, AgentPercent: 20, UserPercent: 90},
	}

	factor, err := Quote(1000, chain, true)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	// 1000 * 1.20 * 1.10, UserPercent never applies.
	if factor.FinalPrice != 1320 {
		t.Errorf("final price = %d, want 1320", factor.FinalPrice)
	}
}

func TestQuoteSpecialPercentOverrides(t *testing.T) {
	chain := []*agents.Agent{
		{ID: 1, AgentPercent: 10},
		{ID: 5, AgentPercent: 20, UserPercent: 40, SpecialPercent: 5},
	}

	factor, err := Quote(1000, chain, false)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	// Special percent wins over UserPercent on the direct-agent step.
	if factor.Postings[0].Profit != 50 {
		t.Errorf("leaf profit = %d, want 50", factor.Postings[0].Profit)
	}
	if factor.FinalPrice != 1155 {
		t.Errorf("final price = %d, want 1155", factor.FinalPrice)
	}
}

func TestQuoteSingleAgentChain(t *testing.T) {
	chain := []*agents.Agent{{ID: 1, AgentPercent: 10, UserPercent: 30}}

	factor, err := Quote(200, chain, false)
	if err != nil {
		t.Fatalf("Quote: %v", err)
	}
	if factor.FinalPrice != 260 {
		t.Errorf("final price = %d, want 260", factor.FinalPrice)
	}
}

func TestQuoteEmptyChainIsBusinessError(t *testing.T) {
	_, err := Quote(1000, nil, false)
	if !apperr.IsBusinessRule(err) {
		t.Errorf("expected business rule error, got %v", err)
	}
}
