package vpns

import "time"

// VPN is a sellable product backed by one Marzban panel.
type VPN struct {
	ID       int64
	Name     string
	IsActive bool

	// Custom purchase bounds and unit prices (per gigabyte / per day).
	GbMin    int64
	GbMax    int64
	DayMin   int64
	DayMax   int64
	GbPrice  int64
	DayPrice int64

	// Trial account parameters.
	TestEnabled bool
	TestGb      int64
	TestDays    int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BasePrice is the unmarked price of a custom (gb, days) bundle.
func (v *VPN) BasePrice(gb, days int64) int64 {
	return gb*v.GbPrice + days*v.DayPrice
}

// Template is a predefined (days, volume, price) bundle of a VPN.
type Template struct {
	ID       int64
	VpnID    int64
	Title    string
	Gb       int64
	Days     int64
	Price    int64
	IsActive bool
}

type GetCriteria struct {
	ID       *int64
	IsActive *bool
}

type TemplateCriteria struct {
	ID       *int64
	VpnID    *int64
	IsActive *bool
}
