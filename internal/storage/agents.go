package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"digiseller/internal/stories/agents"
)

const (
	agentsTable        = "agents"
	agentRequestsTable = "agent_requests"
	agentIncomesTable  = "agent_incomes"
)

var (
	agentRowFields   = fields(agentRow{})
	requestRowFields = fields(requestRow{})
	incomeRowFields  = fields(incomeRow{})
)

type agentRow struct {
	ID                    int64      `db:"id"`
	AdminUserID           int64      `db:"admin_user_id"`
	AgentCode             int64      `db:"agent_code"`
	BrandName             string     `db:"brand_name"`
	PersianBrandName      string     `db:"persian_brand_name"`
	Path                  string     `db:"path"`
	AgentPercent          int64      `db:"agent_percent"`
	UserPercent           int64      `db:"user_percent"`
	SpecialPercent        int64      `db:"special_percent"`
	CardNumber            string     `db:"card_number"`
	CardHolderName        string     `db:"card_holder_name"`
	CardPaymentEnabled    bool       `db:"card_payment_enabled"`
	UserMinTopup          int64      `db:"user_min_topup"`
	UserMaxTopup          int64      `db:"user_max_topup"`
	AgentMinTopup         int64      `db:"agent_min_topup"`
	AgentMaxTopup         int64      `db:"agent_max_topup"`
	AllowNegative         bool       `db:"allow_negative"`
	NegativeChargeCeiling int64      `db:"negative_charge_ceiling"`
	DisabledAccountAt     *time.Time `db:"disabled_account_at"`
	CreatedAt             time.Time  `db:"created_at"`
	UpdatedAt             time.Time  `db:"updated_at"`
}

func (a agentRow) ToModel() *agents.Agent {
	return &agents.Agent{
		ID:                    a.ID,
		AdminUserID:           a.AdminUserID,
		AgentCode:             a.AgentCode,
		BrandName:             a.BrandName,
		PersianBrandName:      a.PersianBrandName,
		Path:                  agents.Path(a.Path),
		AgentPercent:          a.AgentPercent,
		UserPercent:           a.UserPercent,
		SpecialPercent:        a.SpecialPercent,
		CardNumber:            a.CardNumber,
		CardHolderName:        a.CardHolderName,
		CardPaymentEnabled:    a.CardPaymentEnabled,
		UserMinTopup:          a.UserMinTopup,
		UserMaxTopup:          a.UserMaxTopup,
		AgentMinTopup:         a.AgentMinTopup,
		AgentMaxTopup:         a.AgentMaxTopup,
		AllowNegative:         a.AllowNegative,
		NegativeChargeCeiling: a.NegativeChargeCeiling,
		DisabledAccountAt:     a.DisabledAccountAt,
		CreatedAt:             a.CreatedAt,
		UpdatedAt:             a.UpdatedAt,
	}
}

type requestRow struct {
	ID               int64      `db:"id"`
	UserID           int64      `db:"user_id"`
	ParentAgentID    int64      `db:"parent_agent_id"`
	BrandName        string     `db:"brand_name"`
	PersianBrandName string     `db:"persian_brand_name"`
	CardNumber       string     `db:"card_number"`
	CardHolderName   string     `db:"card_holder_name"`
	Description      string     `db:"description"`
	AgentPercent     int64      `db:"agent_percent"`
	UserPercent      int64      `db:"user_percent"`
	Status           string     `db:"status"`
	CreatedAt        time.Time  `db:"created_at"`
	DecidedAt        *time.Time `db:"decided_at"`
}

func (r requestRow) ToModel() *agents.Request {
	return &agents.Request{
		ID:               r.ID,
		UserID:           r.UserID,
		ParentAgentID:    r.ParentAgentID,
		BrandName:        r.BrandName,
		PersianBrandName: r.PersianBrandName,
		CardNumber:       r.CardNumber,
		CardHolderName:   r.CardHolderName,
		Description:      r.Description,
		AgentPercent:     r.AgentPercent,
		UserPercent:      r.UserPercent,
		Status:           agents.RequestStatus(r.Status),
		CreatedAt:        r.CreatedAt,
		DecidedAt:        r.DecidedAt,
	}
}

type incomeRow struct {
	ID             int64     `db:"id"`
	AgentID        int64     `db:"agent_id"`
	SubscriptionID int64     `db:"subscription_id"`
	Profit         int64     `db:"profit"`
	BasePrice      int64     `db:"base_price"`
	CreatedAt      time.Time `db:"created_at"`
}

func (i incomeRow) ToModel() *agents.IncomeDetail {
	return &agents.IncomeDetail{
		ID:             i.ID,
		AgentID:        i.AgentID,
		SubscriptionID: i.SubscriptionID,
		Profit:         i.Profit,
		BasePrice:      i.BasePrice,
		CreatedAt:      i.CreatedAt,
	}
}

func (s *storageImpl) GetAgent(ctx context.Context, criteria agents.GetCriteria) (*agents.Agent, error) {
	query := s.stmpBuilder().
		Select(agentRowFields).
		From(agentsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.AdminUserID != nil {
		query = query.Where(sq.Eq{"admin_user_id": *criteria.AdminUserID})
	}
	if criteria.AgentCode != nil {
		query = query.Where(sq.Eq{"agent_code": *criteria.AgentCode})
	}
	if criteria.Path != nil {
		query = query.Where(sq.Eq{"path": string(*criteria.Path)})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var a agentRow
	err = s.db.GetContext(ctx, &a, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return a.ToModel(), nil
}

func (s *storageImpl) ListAgents(ctx context.Context) ([]*agents.Agent, error) {
	q, args, err := s.stmpBuilder().
		Select(agentRowFields).
		From(agentsTable).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	return s.selectAgents(ctx, q, args)
}

func (s *storageImpl) ListAgentsByIDs(ctx context.Context, ids []int64) ([]*agents.Agent, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	q, args, err := s.stmpBuilder().
		Select(agentRowFields).
		From(agentsTable).
		Where(sq.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	return s.selectAgents(ctx, q, args)
}

// ListDescendants returns every agent whose path starts with prefix,
// the prefix owner included.
func (s *storageImpl) ListDescendants(ctx context.Context, prefix agents.Path) ([]*agents.Agent, error) {
	q, args, err := s.stmpBuilder().
		Select(agentRowFields).
		From(agentsTable).
		Where(sq.Like{"path": string(prefix) + "%"}).
		OrderBy("path").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	return s.selectAgents(ctx, q, args)
}

func (s *storageImpl) selectAgents(ctx context.Context, q string, args []interface{}) ([]*agents.Agent, error) {
	var rows []agentRow
	err := s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*agents.Agent
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) UpdateAgentPercents(ctx context.Context, agentID int64, params agents.UpdatePercentParams) error {
	query := s.stmpBuilder().
		Update(agentsTable).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": agentID})

	if params.AgentPercent != nil {
		query = query.Set("agent_percent", *params.AgentPercent)
	}
	if params.UserPercent != nil {
		query = query.Set("user_percent", *params.UserPercent)
	}
	if params.SpecialPercent != nil {
		query = query.Set("special_percent", *params.SpecialPercent)
	}

	return s.exec(ctx, query)
}

func (s *storageImpl) UpdateAgentLimits(ctx context.Context, agentID int64, params agents.UpdateLimitsParams) error {
	query := s.stmpBuilder().
		Update(agentsTable).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": agentID})

	if params.UserMinTopup != nil {
		query = query.Set("user_min_topup", *params.UserMinTopup)
	}
	if params.UserMaxTopup != nil {
		query = query.Set("user_max_topup", *params.UserMaxTopup)
	}
	if params.AgentMinTopup != nil {
		query = query.Set("agent_min_topup", *params.AgentMinTopup)
	}
	if params.AgentMaxTopup != nil {
		query = query.Set("agent_max_topup", *params.AgentMaxTopup)
	}

	return s.exec(ctx, query)
}

func (s *storageImpl) UpdateAgentCard(ctx context.Context, agentID int64, params agents.UpdateCardParams) error {
	query := s.stmpBuilder().
		Update(agentsTable).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": agentID})

	if params.CardNumber != nil {
		query = query.Set("card_number", *params.CardNumber)
	}
	if params.CardHolderName != nil {
		query = query.Set("card_holder_name", *params.CardHolderName)
	}
	if params.CardPaymentEnabled != nil {
		query = query.Set("card_payment_enabled", *params.CardPaymentEnabled)
	}

	return s.exec(ctx, query)
}

func (s *storageImpl) SetDisabledAccountAt(ctx context.Context, agentID int64, at *time.Time) error {
	query := s.stmpBuilder().
		Update(agentsTable).
		Set("disabled_account_at", at).
		Set("updated_at", s.now()).
		Where(sq.Eq{"id": agentID})

	return s.exec(ctx, query)
}

// ListAgentsOverNegativeCeiling finds agents allowed to owe whose admin
// balance crossed below their negative ceiling.
func (s *storageImpl) ListAgentsOverNegativeCeiling(ctx context.Context) ([]*agents.Agent, error) {
	q, args, err := s.stmpBuilder().
		Select("a.*").
		From(agentsTable + " a").
		Join(usersTable + " u ON u.id = a.admin_user_id").
		Where(sq.Eq{"a.allow_negative": true}).
		Where(sq.Expr("u.balance < -a.negative_charge_ceiling")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	return s.selectAgents(ctx, q, args)
}

// ListAgentsWithCountdown finds agents whose disable countdown is armed.
func (s *storageImpl) ListAgentsWithCountdown(ctx context.Context) ([]*agents.Agent, error) {
	q, args, err := s.stmpBuilder().
		Select(agentRowFields).
		From(agentsTable).
		Where(sq.NotEq{"disabled_account_at": nil}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	return s.selectAgents(ctx, q, args)
}

func (s *storageImpl) CountUsersByAgent(ctx context.Context, agentID int64) (int, error) {
	q, args, err := s.stmpBuilder().
		Select("COUNT(*)").
		From(usersTable).
		Where(sq.Eq{"agent_id": agentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var count int
	if err := s.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return count, nil
}

func (s *storageImpl) BlockUsersByAgent(ctx context.Context, agentID int64) (int, error) {
	q, args, err := s.stmpBuilder().
		Update(usersTable).
		Set("is_blocked", true).
		Set("updated_at", s.now()).
		Where(sq.Eq{"agent_id": agentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected: %w", err)
	}

	return int(affected), nil
}

func (s *storageImpl) InsertRequest(ctx context.Context, req agents.Request) (*agents.Request, error) {
	params := map[string]interface{}{
		"user_id":            req.UserID,
		"parent_agent_id":    req.ParentAgentID,
		"brand_name":         req.BrandName,
		"persian_brand_name": req.PersianBrandName,
		"card_number":        req.CardNumber,
		"card_holder_name":   req.CardHolderName,
		"description":        req.Description,
		"agent_percent":      req.AgentPercent,
		"user_percent":       req.UserPercent,
		"status":             string(agents.RequestPending),
		"created_at":         s.now(),
	}

	q, args, err := s.stmpBuilder().
		Insert(agentRequestsTable).
		SetMap(params).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	result, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId: %w", err)
	}

	return s.GetRequest(ctx, id)
}

func (s *storageImpl) GetRequest(ctx context.Context, id int64) (*agents.Request, error) {
	q, args, err := s.stmpBuilder().
		Select(requestRowFields).
		From(agentRequestsTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var r requestRow
	err = s.db.GetContext(ctx, &r, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return r.ToModel(), nil
}

func (s *storageImpl) GetPendingRequestByUser(ctx context.Context, userID int64) (*agents.Request, error) {
	q, args, err := s.stmpBuilder().
		Select(requestRowFields).
		From(agentRequestsTable).
		Where(sq.Eq{"user_id": userID, "status": string(agents.RequestPending)}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var r requestRow
	err = s.db.GetContext(ctx, &r, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return r.ToModel(), nil
}

func (s *storageImpl) ListRequestsByParent(ctx context.Context, parentAgentID int64) ([]*agents.Request, error) {
	q, args, err := s.stmpBuilder().
		Select(requestRowFields).
		From(agentRequestsTable).
		Where(sq.Eq{"parent_agent_id": parentAgentID, "status": string(agents.RequestPending)}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []requestRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*agents.Request
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) MarkRequest(ctx context.Context, id int64, status agents.RequestStatus) error {
	query := s.stmpBuilder().
		Update(agentRequestsTable).
		Set("status", string(status)).
		Set("decided_at", s.now()).
		Where(sq.Eq{"id": id})

	return s.exec(ctx, query)
}

func (s *storageImpl) InsertIncomeDetails(ctx context.Context, details []agents.IncomeDetail) error {
	if len(details) == 0 {
		return nil
	}

	query := s.stmpBuilder().
		Insert(agentIncomesTable).
		Columns("agent_id", "subscription_id", "profit", "base_price", "created_at")

	now := s.now()
	for _, d := range details {
		query = query.Values(d.AgentID, d.SubscriptionID, d.Profit, d.BasePrice, now)
	}

	return s.exec(ctx, query)
}

func (s *storageImpl) ListIncomesByAgent(ctx context.Context, agentID int64) ([]*agents.IncomeDetail, error) {
	q, args, err := s.stmpBuilder().
		Select(incomeRowFields).
		From(agentIncomesTable).
		Where(sq.Eq{"agent_id": agentID}).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []incomeRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*agents.IncomeDetail
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) SumProfitByAgent(ctx context.Context, agentID int64) (int64, error) {
	q, args, err := s.stmpBuilder().
		Select("COALESCE(SUM(profit), 0)").
		From(agentIncomesTable).
		Where(sq.Eq{"agent_id": agentID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sql query: %w", err)
	}

	var sum int64
	if err := s.db.GetContext(ctx, &sum, q, args...); err != nil {
		return 0, fmt.Errorf("db.GetContext: %w", err)
	}

	return sum, nil
}

// CreateAgentTx inserts the agent, derives its path from the generated id,
// re-parents the admin user and optionally accepts the originating request,
// all in one transaction.
func (s *storageImpl) CreateAgentTx(ctx context.Context, op agents.CreateAgentOp) (*agents.Agent, error) {
	var agentID int64

	err := s.txm(ctx, func(tx *sqlx.Tx) error {
		now := s.now()

		params := map[string]interface{}{
			"admin_user_id":           op.Agent.AdminUserID,
			"agent_code":              op.Agent.AgentCode,
			"brand_name":              op.Agent.BrandName,
			"persian_brand_name":      op.Agent.PersianBrandName,
			"path":                    "",
			"agent_percent":           op.Agent.AgentPercent,
			"user_percent":            op.Agent.UserPercent,
			"special_percent":         op.Agent.SpecialPercent,
			"card_number":             op.Agent.CardNumber,
			"card_holder_name":        op.Agent.CardHolderName,
			"card_payment_enabled":    op.Agent.CardPaymentEnabled,
			"user_min_topup":          op.Agent.UserMinTopup,
			"user_max_topup":          op.Agent.UserMaxTopup,
			"agent_min_topup":         op.Agent.AgentMinTopup,
			"agent_max_topup":         op.Agent.AgentMaxTopup,
			"allow_negative":          op.Agent.AllowNegative,
			"negative_charge_ceiling": op.Agent.NegativeChargeCeiling,
			"created_at":              now,
			"updated_at":              now,
		}

		q, args, err := s.stmpBuilder().
			Insert(agentsTable).
			SetMap(params).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}

		result, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		agentID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("result.LastInsertId: %w", err)
		}

		// Second phase: the path needs the generated id.
		q, args, err = s.stmpBuilder().
			Update(agentsTable).
			Set("path", string(op.ParentPath.Child(agentID))).
			Where(sq.Eq{"id": agentID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		q, args, err = s.stmpBuilder().
			Update(usersTable).
			Set("is_agent", true).
			Set("agent_id", op.ParentAgentID).
			Set("updated_at", now).
			Where(sq.Eq{"id": op.Agent.AdminUserID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build sql query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("tx.ExecContext: %w", err)
		}

		if op.RequestID != nil {
			q, args, err = s.stmpBuilder().
				Update(agentRequestsTable).
				Set("status", string(agents.RequestAccepted)).
				Set("decided_at", now).
				Where(sq.Eq{"id": *op.RequestID}).
				ToSql()
			if err != nil {
				return fmt.Errorf("build sql query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, q, args...); err != nil {
				return fmt.Errorf("tx.ExecContext: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetAgent(ctx, agents.GetCriteria{ID: &agentID})
}

func (s *storageImpl) exec(ctx context.Context, query sq.Sqlizer) error {
	q, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build sql query: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}
