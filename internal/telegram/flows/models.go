package flows

// BuyFlowData accumulates a purchase while the user walks the buy flow.
// TemplateID is set for predefined bundles, Gb/Days for custom ones.
// AppendSubID marks a traffic or duration extension of an existing service,
// RenewSubID a full renewal.
type BuyFlowData struct {
	VpnID       int64
	TemplateID  *int64
	Gb          int64
	Days        int64
	RenewSubID  *int64
	AppendSubID int64

	// IdempotencyKey is fixed when the confirmation is shown, so a double
	// pressed confirm button cannot charge twice.
	IdempotencyKey string
}

// TopupFlowData carries the declared card-to-card amount until the receipt
// photo arrives.
type TopupFlowData struct {
	Amount int64
}

// AgentRequestFlowData accumulates the promotion application fields.
type AgentRequestFlowData struct {
	PersianBrandName string
	BrandName        string
	CardNumber       string
	CardHolderName   string
	Phone            string
	Description      string
}

// PercentFlowData remembers which sub-agent's percent is being edited.
type PercentFlowData struct {
	TargetAgentID int64
}

// LimitsFlowData remembers which agent's top-up bounds are being edited.
type LimitsFlowData struct {
	TargetAgentID int64
}

// AdjustFlowData carries a manual balance adjustment the agent is composing.
type AdjustFlowData struct {
	TargetUserID int64
	Increase     bool
	Amount       int64
}

// UserSearchFlowData remembers the found user across the search conversation.
type UserSearchFlowData struct {
	TargetUserID int64
	TargetChatID int64
}

// CardFlowData accumulates an agent's payment card update.
type CardFlowData struct {
	AgentID    int64
	CardNumber string
}
