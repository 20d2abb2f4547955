package vpns

import "context"

type Storage interface {
	GetVPN(ctx context.Context, criteria GetCriteria) (*VPN, error)
	ListVPNs(ctx context.Context, criteria GetCriteria) ([]*VPN, error)
	GetTemplate(ctx context.Context, criteria TemplateCriteria) (*Template, error)
	ListTemplates(ctx context.Context, criteria TemplateCriteria) ([]*Template, error)
}
