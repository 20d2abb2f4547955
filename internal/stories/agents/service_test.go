package agents

import (
	"context"
	"testing"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

// fakeStorage embeds the Storage interface so each test only fills in the
// methods its code path touches.
type fakeStorage struct {
	Storage

	agentsByID    map[int64]*Agent
	agentsByAdmin map[int64]*Agent
	descedants    []*Agent
}

func (f *fakeStorage) GetAgent(_ context.Context, criteria GetCriteria) (*Agent, error) {
	if criteria.ID != nil {
		return f.agentsByID[*criteria.ID], nil
	}
	if criteria.AdminUserID != nil {
		return f.agentsByAdmin[*criteria.AdminUserID], nil
	}
	return nil, nil
}

func (f *fakeStorage) ListAgentsByIDs(_ context.Context, ids []int64) ([]*Agent, error) {
	var out []*Agent
	for _, id := range ids {
		if a, ok := f.agentsByID[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStorage) ListDescendants(_ context.Context, prefix Path) ([]*Agent, error) {
	var out []*Agent
	for _, a := range f.descedants {
		if prefix.Contains(a.Path) {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeUserStorage struct {
	byID map[int64]*users.User
}

func (f *fakeUserStorage) GetUser(_ context.Context, criteria users.GetCriteria) (*users.User, error) {
	if criteria.ID != nil {
		return f.byID[*criteria.ID], nil
	}
	return nil, nil
}

type nopOutbox struct{}

func (nopOutbox) Enqueue(context.Context, notify.Notification) error { return nil }

func TestAncestorChainOrderedRootFirst(t *testing.T) {
	st := &fakeStorage{
		agentsByID: map[int64]*Agent{
			1: {ID: 1, Path: "/1/"},
			5: {ID: 5, Path: "/1/5/"},
			9: {ID: 9, Path: "/1/5/9/"},
		},
	}
	s := NewService(st, &fakeUserStorage{}, nopOutbox{})

	chain, err := s.AncestorChain(context.Background(), 9)
	if err != nil {
		t.Fatalf("AncestorChain: %v", err)
	}
	if len(chain) != 3 {
		t.Fatalf("chain length = %d, want 3", len(chain))
	}
	for i, want := range []int64{1, 5, 9} {
		if chain[i].ID != want {
			t.Errorf("chain[%d].ID = %d, want %d", i, chain[i].ID, want)
		}
	}
}

func TestAncestorChainFailsOnBrokenPath(t *testing.T) {
	// Segment 5 is on the path but no longer resolves to a row.
	st := &fakeStorage{
		agentsByID: map[int64]*Agent{
			1: {ID: 1, Path: "/1/"},
			9: {ID: 9, Path: "/1/5/9/"},
		},
	}
	s := NewService(st, &fakeUserStorage{}, nopOutbox{})

	_, err := s.AncestorChain(context.Background(), 9)
	if !apperr.IsBusinessRule(err) {
		t.Errorf("expected business rule error for broken path, got %v", err)
	}
}

func TestDescendantsAtLevel(t *testing.T) {
	root := &Agent{ID: 1, Path: "/1/"}
	st := &fakeStorage{
		agentsByID: map[int64]*Agent{1: root},
		descedants: []*Agent{
			root,
			{ID: 5, Path: "/1/5/"},
			{ID: 6, Path: "/1/6/"},
			{ID: 9, Path: "/1/5/9/"},
		},
	}
	s := NewService(st, &fakeUserStorage{}, nopOutbox{})

	level1, err := s.DescendantsAtLevel(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("DescendantsAtLevel: %v", err)
	}
	if len(level1) != 2 {
		t.Errorf("level 1 count = %d, want 2", len(level1))
	}

	level2, err := s.DescendantsAtLevel(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("DescendantsAtLevel: %v", err)
	}
	if len(level2) != 1 || level2[0].ID != 9 {
		t.Errorf("level 2 = %+v, want only agent 9", level2)
	}
}

func TestTreeCapsAtTwoLevels(t *testing.T) {
	root := &Agent{ID: 1, AdminUserID: 10, Path: "/1/"}
	st := &fakeStorage{
		agentsByID: map[int64]*Agent{1: root},
		descedants: []*Agent{
			root,
			{ID: 5, AdminUserID: 50, Path: "/1/5/"},
			{ID: 9, AdminUserID: 90, Path: "/1/5/9/"},
			{ID: 12, AdminUserID: 120, Path: "/1/5/9/12/"},
		},
	}
	us := &fakeUserStorage{byID: map[int64]*users.User{
		10: {ID: 10, FirstName: "ریشه"},
		50: {ID: 50, FirstName: "سطح", LastName: "یک"},
		90: {ID: 90, FirstName: "سطح", LastName: "دو"},
	}}
	s := NewService(st, us, nopOutbox{})

	tree, err := s.Tree(context.Background(), 1)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}

	if tree.AdminName != "ریشه" {
		t.Errorf("root admin name = %q", tree.AdminName)
	}
	if len(tree.SubAgents) != 1 || tree.SubAgents[0].Agent.ID != 5 {
		t.Fatalf("expected one direct child (agent 5), got %+v", tree.SubAgents)
	}

	level2 := tree.SubAgents[0].SubAgents
	if len(level2) != 1 || level2[0].Agent.ID != 9 {
		t.Fatalf("expected agent 9 at level two, got %+v", level2)
	}
	// Agent 12 sits three levels down and is cut off by the cap.
	if len(level2[0].SubAgents) != 0 {
		t.Errorf("tree must stop at two levels, got %+v", level2[0].SubAgents)
	}
}

func TestGetByCodeFallsBackToRoot(t *testing.T) {
	st := &fakeStorage{
		agentsByID: map[int64]*Agent{1: {ID: 1, Path: "/1/"}},
	}
	s := NewService(st, &fakeUserStorage{}, nopOutbox{})

	agent, err := s.GetByCode(context.Background(), 999999)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if agent.ID != RootAgentID {
		t.Errorf("unknown code must resolve to root, got agent %d", agent.ID)
	}
}

func TestAddAgentRejectsDuplicateAdmin(t *testing.T) {
	st := &fakeStorage{
		agentsByID: map[int64]*Agent{
			1: {ID: 1, AdminUserID: 100, Path: "/1/"},
			5: {ID: 5, AdminUserID: 200, Path: "/1/5/"},
		},
		agentsByAdmin: map[int64]*Agent{
			100: {ID: 1, AdminUserID: 100, Path: "/1/"},
			200: {ID: 5, AdminUserID: 200, Path: "/1/5/"},
		},
	}
	us := &fakeUserStorage{byID: map[int64]*users.User{
		200: {ID: 200, ChatID: 2000},
	}}
	s := NewService(st, us, nopOutbox{})

	// User 200 already administers agent 5; promoting it again must fail
	// before any row is written.
	_, err := s.AddAgent(context.Background(), 100, AddAgentSpec{
		AdminUserID: 200,
		BrandName:   "dup",
		Percent:     20,
	})
	if !apperr.IsExists(err) {
		t.Fatalf("expected Exists error, got %v", err)
	}
}
