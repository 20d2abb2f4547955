package agents

import "time"

// RootAgentID is the id of the seed agent every orphan user falls under.
const RootAgentID int64 = 1

type Agent struct {
	ID               int64
	AdminUserID      int64
	AgentCode        int64
	BrandName        string
	PersianBrandName string
	Path             Path

	// AgentPercent marks up sales to sub-agents, UserPercent sales to plain
	// end-users. SpecialPercent is set on this row by the parent and, when
	// non-zero, overrides AgentPercent in the parent's cut.
	AgentPercent   int64
	UserPercent    int64
	SpecialPercent int64

	CardNumber         string
	CardHolderName     string
	CardPaymentEnabled bool

	UserMinTopup  int64
	UserMaxTopup  int64
	AgentMinTopup int64
	AgentMaxTopup int64

	AllowNegative         bool
	NegativeChargeCeiling int64
	DisabledAccountAt     *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Level is the agent's depth in the reseller tree (root = 1).
func (a *Agent) Level() int { return a.Path.Level() }

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

// Request is a pending promotion of a user to an agent under ParentAgentID.
type Request struct {
	ID               int64
	UserID           int64
	ParentAgentID    int64
	BrandName        string
	PersianBrandName string
	CardNumber       string
	CardHolderName   string
	Description      string
	AgentPercent     int64
	UserPercent      int64
	Status           RequestStatus
	CreatedAt        time.Time
	DecidedAt        *time.Time
}

// IncomeDetail is a single commission posting produced by a purchase.
type IncomeDetail struct {
	ID             int64
	AgentID        int64
	SubscriptionID int64
	Profit         int64
	BasePrice      int64
	CreatedAt      time.Time
}

// Node is one vertex of the bounded agent tree returned to admins.
type Node struct {
	Agent     Agent
	AdminName string
	SubAgents []*Node
}

type AddAgentSpec struct {
	AdminUserID      int64
	BrandName        string
	PersianBrandName string
	Percent          int64
}

type Info struct {
	Agent            Agent
	AdminName        string
	UserCount        int
	CountAgentLevel1 int
	CountAgentLevel2 int
	Profit           int64
}

type GetCriteria struct {
	ID          *int64
	AdminUserID *int64
	AgentCode   *int64
	Path        *Path
}

type UpdatePercentParams struct {
	AgentPercent   *int64
	UserPercent    *int64
	SpecialPercent *int64
}

type UpdateLimitsParams struct {
	UserMinTopup  *int64
	UserMaxTopup  *int64
	AgentMinTopup *int64
	AgentMaxTopup *int64
}

type UpdateCardParams struct {
	CardNumber         *string
	CardHolderName     *string
	CardPaymentEnabled *bool
}
