package agents

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/samber/lo"

	"digiseller/internal/stories/apperr"
	"digiseller/internal/stories/notify"
	"digiseller/internal/stories/users"
)

// maxTreeDepth caps the recursive tree view to keep responses bounded.
const maxTreeDepth = 2

// disableGracePeriod is how long a negative agent has to settle up before its
// user accounts are disabled.
const disableGracePeriod = 24 * time.Hour

type Service struct {
	storage     Storage
	userStorage UserStorage
	outbox      Outbox
	now         func() time.Time
}

func NewService(storage Storage, userStorage UserStorage, outbox Outbox) *Service {
	return &Service{
		storage:     storage,
		userStorage: userStorage,
		outbox:      outbox,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Agent, error) {
	agent, err := s.storage.GetAgent(ctx, GetCriteria{ID: &id})
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, apperr.NotFound("نمایندگی با این شناسه وجود ندارد")
	}
	return agent, nil
}

// GetByAdminUserID returns the agent administered by userID, or nil when the
// user is not an agent admin.
func (s *Service) GetByAdminUserID(ctx context.Context, userID int64) (*Agent, error) {
	return s.storage.GetAgent(ctx, GetCriteria{AdminUserID: &userID})
}

// GetByCode resolves a public invite code, falling back to the root agent for
// unknown codes so a bad deep-link still enrolls the user somewhere.
func (s *Service) GetByCode(ctx context.Context, code int64) (*Agent, error) {
	agent, err := s.storage.GetAgent(ctx, GetCriteria{AgentCode: &code})
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return s.GetByID(ctx, RootAgentID)
	}
	return agent, nil
}

// AncestorChain returns the agents on agentID's materialized path ordered
// root first and ending with the agent itself. A path segment that no longer
// resolves to a row is a broken hierarchy and fails the whole calculation.
func (s *Service) AncestorChain(ctx context.Context, agentID int64) ([]*Agent, error) {
	agent, err := s.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	ids, err := agent.Path.Segments()
	if err != nil {
		return nil, apperr.BusinessRule("مسیر نمایندگی معتبر نیست")
	}

	found, err := s.storage.ListAgentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := lo.KeyBy(found, func(a *Agent) int64 { return a.ID })
	chain := make([]*Agent, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			return nil, apperr.BusinessRule(fmt.Sprintf("نمایندگی %d در مسیر وجود ندارد", id))
		}
		chain = append(chain, a)
	}
	return chain, nil
}

// DescendantsAtLevel lists agents exactly rel levels below agentID.
func (s *Service) DescendantsAtLevel(ctx context.Context, agentID int64, rel int) ([]*Agent, error) {
	agent, err := s.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	descendants, err := s.storage.ListDescendants(ctx, agent.Path)
	if err != nil {
		return nil, err
	}

	want := agent.Level() + rel
	return lo.Filter(descendants, func(a *Agent, _ int) bool {
		return a.ID != agent.ID && a.Level() == want
	}), nil
}

// Tree builds the sub-agent tree rooted at agentID, capped at two levels.
func (s *Service) Tree(ctx context.Context, agentID int64) (*Node, error) {
	root, err := s.GetByID(ctx, agentID)
	if err != nil {
		return nil, err
	}

	all, err := s.storage.ListDescendants(ctx, root.Path)
	if err != nil {
		return nil, err
	}

	return s.buildNode(ctx, root, all, 0)
}

func (s *Service) buildNode(ctx context.Context, agent *Agent, all []*Agent, depth int) (*Node, error) {
	node := &Node{Agent: *agent}

	admin, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &agent.AdminUserID})
	if err != nil {
		return nil, err
	}
	if admin != nil {
		node.AdminName = admin.FullName()
	}

	if depth >= maxTreeDepth {
		return node, nil
	}

	children := lo.Filter(all, func(a *Agent, _ int) bool {
		return agent.Path.Contains(a.Path) && a.Level() == agent.Level()+1
	})
	for _, child := range children {
		childNode, err := s.buildNode(ctx, child, all, depth+1)
		if err != nil {
			return nil, err
		}
		node.SubAgents = append(node.SubAgents, childNode)
	}
	return node, nil
}

// AddAgent promotes spec.AdminUserID to an agent directly under the agent
// administered by parentAdminUserID. The row insert and the path assignment
// are two writes inside one transaction; a failure between them rolls the
// whole creation back.
func (s *Service) AddAgent(ctx context.Context, parentAdminUserID int64, spec AddAgentSpec) (*Agent, error) {
	admin, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &spec.AdminUserID})
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, apperr.NotFound("چنین کاربری وجود ندارد")
	}

	if existing, err := s.storage.GetAgent(ctx, GetCriteria{AdminUserID: &spec.AdminUserID}); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Exists("این کاربر مدیر نمایندگی دیگری است")
	}

	parent, err := s.storage.GetAgent(ctx, GetCriteria{AdminUserID: &parentAdminUserID})
	if err != nil {
		return nil, err
	}
	if parent == nil {
		return nil, apperr.NotFound("شما نماینده نیستید")
	}

	return s.storage.CreateAgentTx(ctx, CreateAgentOp{
		Agent: Agent{
			AdminUserID:      spec.AdminUserID,
			AgentCode:        newAgentCode(),
			BrandName:        spec.BrandName,
			PersianBrandName: spec.PersianBrandName,
			AgentPercent:     spec.Percent,
		},
		ParentPath:    parent.Path,
		ParentAgentID: parent.ID,
	})
}

// SubmitRequest records a user's application to become an agent under its
// current agent and notifies the parent admin with accept/reject buttons.
func (s *Service) SubmitRequest(ctx context.Context, userID int64, req Request) (*Request, error) {
	if agent, err := s.storage.GetAgent(ctx, GetCriteria{AdminUserID: &userID}); err != nil {
		return nil, err
	} else if agent != nil {
		return nil, apperr.Exists("شما نماینده هستید")
	}

	if pending, err := s.storage.GetPendingRequestByUser(ctx, userID); err != nil {
		return nil, err
	} else if pending != nil {
		return nil, apperr.Exists("درخواست شما قبلا ثبت شده است")
	}

	user, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("کاربری با این شناسه یافت نشد")
	}

	parent, err := s.GetByID(ctx, user.AgentID)
	if err != nil {
		return nil, err
	}

	req.UserID = userID
	req.ParentAgentID = parent.ID
	req.Status = RequestPending

	created, err := s.storage.InsertRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	parentAdmin, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &parent.AdminUserID})
	if err != nil {
		return nil, err
	}
	if parentAdmin != nil {
		err = s.outbox.Enqueue(ctx, notify.Notification{
			ChatID: parentAdmin.ChatID,
			Message: fmt.Sprintf(
				"درخواست نمایندگی جدید\nکاربر: %s\nتوضیحات: %s",
				user.FullName(), req.Description),
			Buttons: [][]notify.Button{{
				{Text: "تایید درخواست ✅", CallbackData: fmt.Sprintf("accept_agent_request?id=%d", created.ID)},
				{Text: "رد درخواست ❌", CallbackData: fmt.Sprintf("reject_agent_request?id=%d", created.ID)},
			}},
		})
		if err != nil {
			return nil, err
		}
	}

	return created, nil
}

// ResolveRequest accepts or rejects a pending agent request. Acceptance runs
// the same transactional two-phase creation as AddAgent and copies the
// proposed brand, card and percent fields onto the new agent row.
// GetRequest returns one promotion request by id.
func (s *Service) GetRequest(ctx context.Context, requestID int64) (*Request, error) {
	req, err := s.storage.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("درخواستی یافت نشد")
	}
	return req, nil
}

func (s *Service) ResolveRequest(ctx context.Context, requestID int64, accept bool) (*Agent, error) {
	req, err := s.storage.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("درخواستی یافت نشد")
	}
	if req.Status != RequestPending {
		return nil, apperr.BusinessRule("این درخواست قبلا بررسی شده است")
	}

	user, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &req.UserID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("کاربری با این شناسه یافت نشد")
	}

	if !accept {
		if err := s.storage.MarkRequest(ctx, requestID, RequestRejected); err != nil {
			return nil, err
		}
		return nil, s.outbox.Enqueue(ctx, notify.Notification{
			ChatID:  user.ChatID,
			Message: "درخواست نمایندگی شما رد شد ❌",
		})
	}

	parent, err := s.GetByID(ctx, req.ParentAgentID)
	if err != nil {
		return nil, err
	}

	agent, err := s.storage.CreateAgentTx(ctx, CreateAgentOp{
		Agent: Agent{
			AdminUserID:      req.UserID,
			AgentCode:        newAgentCode(),
			BrandName:        req.BrandName,
			PersianBrandName: req.PersianBrandName,
			CardNumber:       req.CardNumber,
			CardHolderName:   req.CardHolderName,
			AgentPercent:     req.AgentPercent,
			UserPercent:      req.UserPercent,
		},
		ParentPath:    parent.Path,
		ParentAgentID: parent.ID,
		RequestID:     &requestID,
	})
	if err != nil {
		return nil, err
	}

	if err := s.outbox.Enqueue(ctx, notify.Notification{
		ChatID:  user.ChatID,
		Message: "درخواست نمایندگی شما تایید شد ✅",
	}); err != nil {
		return nil, err
	}
	return agent, nil
}

func (s *Service) ListRequests(ctx context.Context, adminUserID int64) ([]*Request, error) {
	agent, err := s.GetByAdminUserID(ctx, adminUserID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, apperr.BusinessRule("شما نماینده نیستید")
	}
	return s.storage.ListRequestsByParent(ctx, agent.ID)
}

// UpdatePercents changes percent fields on an agent. SpecialPercent may only
// be set by the direct parent; the other fields by the agent itself or any
// ancestor.
func (s *Service) UpdatePercents(ctx context.Context, callerAdminUserID, agentID int64, params UpdatePercentParams) error {
	for _, p := range []*int64{params.AgentPercent, params.UserPercent, params.SpecialPercent} {
		if p != nil && (*p < 0 || *p > 300) {
			return apperr.Validation("درصد باید بین ۰ تا ۳۰۰ باشد")
		}
	}

	caller, err := s.storage.GetAgent(ctx, GetCriteria{AdminUserID: &callerAdminUserID})
	if err != nil {
		return err
	}
	if caller == nil {
		return apperr.BusinessRule("شما نماینده نیستید")
	}

	target, err := s.GetByID(ctx, agentID)
	if err != nil {
		return err
	}

	if params.SpecialPercent != nil && target.Path.ParentPath() != caller.Path {
		return apperr.BusinessRule("درصد ویژه فقط توسط نماینده مادر قابل تنظیم است")
	}
	if target.ID != caller.ID && !caller.Path.Contains(target.Path) {
		return apperr.BusinessRule("این نمایندگی زیرمجموعه شما نیست")
	}

	return s.storage.UpdateAgentPercents(ctx, agentID, params)
}

func (s *Service) UpdateLimits(ctx context.Context, agentID int64, params UpdateLimitsParams) error {
	if _, err := s.GetByID(ctx, agentID); err != nil {
		return err
	}
	return s.storage.UpdateAgentLimits(ctx, agentID, params)
}

func (s *Service) UpdateCard(ctx context.Context, agentID int64, params UpdateCardParams) error {
	if _, err := s.GetByID(ctx, agentID); err != nil {
		return err
	}
	return s.storage.UpdateAgentCard(ctx, agentID, params)
}

// Info assembles the agent profile shown to its admin: descendant counts one
// and two levels down plus the accumulated commission profit.
func (s *Service) Info(ctx context.Context, adminUserID int64) (*Info, error) {
	agent, err := s.GetByAdminUserID(ctx, adminUserID)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, apperr.BusinessRule("شما نماینده نیستید")
	}

	admin, err := s.userStorage.GetUser(ctx, users.GetCriteria{ID: &adminUserID})
	if err != nil {
		return nil, err
	}

	level1, err := s.DescendantsAtLevel(ctx, agent.ID, 1)
	if err != nil {
		return nil, err
	}
	level2, err := s.DescendantsAtLevel(ctx, agent.ID, 2)
	if err != nil {
		return nil, err
	}

	userCount, err := s.storage.CountUsersByAgent(ctx, agent.ID)
	if err != nil {
		return nil, err
	}

	profit, err := s.storage.SumProfitByAgent(ctx, agent.ID)
	if err != nil {
		return nil, err
	}

	info := &Info{
		Agent:            *agent,
		UserCount:        userCount,
		CountAgentLevel1: len(level1),
		CountAgentLevel2: len(level2),
		Profit:           profit,
	}
	if admin != nil {
		info.AdminName = admin.FullName()
	}
	return info, nil
}

// AddIncomeDetails records commission postings produced by a purchase.
func (s *Service) AddIncomeDetails(ctx context.Context, details []IncomeDetail) error {
	if len(details) == 0 {
		return nil
	}
	return s.storage.InsertIncomeDetails(ctx, details)
}

// AgentsReachedNegativeLimit lists agents whose admin wallet liability
// exceeds its configured negative ceiling.
func (s *Service) AgentsReachedNegativeLimit(ctx context.Context) ([]*Agent, error) {
	return s.storage.ListAgentsOverNegativeCeiling(ctx)
}

// AgentsWithArmedCountdown lists agents whose disable countdown is running,
// whether or not they are still over the ceiling.
func (s *Service) AgentsWithArmedCountdown(ctx context.Context) ([]*Agent, error) {
	return s.storage.ListAgentsWithCountdown(ctx)
}

// StartDisableCountdown arms the 24-hour disable countdown. A countdown that
// is already running is left untouched, so repeated sweeps are idempotent.
func (s *Service) StartDisableCountdown(ctx context.Context, agentID int64) (time.Time, error) {
	agent, err := s.GetByID(ctx, agentID)
	if err != nil {
		return time.Time{}, err
	}
	if agent.DisabledAccountAt != nil {
		return *agent.DisabledAccountAt, nil
	}

	deadline := s.now().Add(disableGracePeriod)
	if err := s.storage.SetDisabledAccountAt(ctx, agentID, &deadline); err != nil {
		return time.Time{}, err
	}
	return deadline, nil
}

// ClearDisableCountdown disarms the countdown once the agent settles up.
func (s *Service) ClearDisableCountdown(ctx context.Context, agentID int64) error {
	return s.storage.SetDisabledAccountAt(ctx, agentID, nil)
}

// DisableAllUserAccounts blocks every user enrolled under the agent and
// returns how many were affected. Subscription shutdown is the caller's job.
func (s *Service) DisableAllUserAccounts(ctx context.Context, agentID int64) (int, error) {
	if _, err := s.GetByID(ctx, agentID); err != nil {
		return 0, err
	}
	return s.storage.BlockUsersByAgent(ctx, agentID)
}

func newAgentCode() int64 {
	return int64(rand.Intn(9999999-10000) + 10000)
}
