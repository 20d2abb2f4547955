package states

type State string

const (
	StateNone State = "none"
)

// ubs -> user buy service
// top -> user top up wallet
// agr -> user agent request
// pct -> agent percent editing
// lim -> agent limit editing
// adj -> agent manual balance adjustment
// usr -> agent user search
// tkt -> user support ticket
// crd -> agent card details editing

// buy service states
const (
	UserBuyWaitGb         State = "ubs_wt_gb"
	UserBuyWaitDays       State = "ubs_wt_days"
	UserBuyWaitConfirm    State = "ubs_wt_confirm"
	UserBuyWaitAppendGb   State = "ubs_wt_append_gb"
	UserBuyWaitAppendDays State = "ubs_wt_append_days"
)

// wallet top up states
const (
	TopupWaitAmount  State = "top_wt_amount"
	TopupWaitReceipt State = "top_wt_receipt"
)

// agent request states
const (
	AgentRequestWaitPersianBrand State = "agr_wt_persian_brand"
	AgentRequestWaitEnglishBrand State = "agr_wt_english_brand"
	AgentRequestWaitCardNumber   State = "agr_wt_card_number"
	AgentRequestWaitCardHolder   State = "agr_wt_card_holder"
	AgentRequestWaitPhone        State = "agr_wt_phone"
	AgentRequestWaitDescription  State = "agr_wt_description"
)

// percent editing states
const (
	PercentWaitUser    State = "pct_wt_user"
	PercentWaitAgent   State = "pct_wt_agent"
	PercentWaitSpecial State = "pct_wt_special"
)

// limit editing states
const (
	LimitWaitUserMin  State = "lim_wt_user_min"
	LimitWaitUserMax  State = "lim_wt_user_max"
	LimitWaitAgentMin State = "lim_wt_agent_min"
	LimitWaitAgentMax State = "lim_wt_agent_max"
)

// manual balance adjustment states
const (
	AdjustWaitAmount      State = "adj_wt_amount"
	AdjustWaitDescription State = "adj_wt_description"
)

// user search and messaging states
const (
	UserSearchWaitChatID  State = "usr_wt_chat_id"
	UserSearchWaitMessage State = "usr_wt_message"
)

// support ticket states
const (
	TicketWaitMessage State = "tkt_wt_message"
)

// card details editing states
const (
	CardWaitNumber State = "crd_wt_number"
	CardWaitHolder State = "crd_wt_holder"
)
