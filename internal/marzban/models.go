package marzban

import "time"

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusDisabled UserStatus = "disabled"
)

// CreateUserRequest provisions a fresh panel account.
type CreateUserRequest struct {
	Username       string
	TrafficLimitGB int64
	ExpiresAt      time.Time
}

// ModifyUserRequest extends or resizes an existing panel account. Zero
// fields are left unchanged.
type ModifyUserRequest struct {
	Username        string
	AddTrafficGB    int64
	ExtendExpiresTo *time.Time
}

// Credentials is what the bot hands back to the buyer.
type Credentials struct {
	Username        string
	SubscriptionURL string
	Links           []string
}

type userPayload struct {
	Username  string              `json:"username"`
	Proxies   map[string]struct{} `json:"proxies,omitempty"`
	DataLimit int64               `json:"data_limit,omitempty"`
	Expire    int64               `json:"expire,omitempty"`
	Status    string              `json:"status,omitempty"`
}

type userResponse struct {
	Username        string   `json:"username"`
	SubscriptionURL string   `json:"subscription_url"`
	Links           []string `json:"links"`
	DataLimit       int64    `json:"data_limit"`
	Expire          int64    `json:"expire"`
	Status          string   `json:"status"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

const bytesPerGB = 1024 * 1024 * 1024
