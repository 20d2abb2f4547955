package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"digiseller/internal/stories/vpns"
)

const (
	vpnsTable         = "vpns"
	vpnTemplatesTable = "vpn_templates"
)

var (
	vpnRowFields      = fields(vpnRow{})
	templateRowFields = fields(templateRow{})
)

type vpnRow struct {
	ID          int64     `db:"id"`
	Name        string    `db:"name"`
	IsActive    bool      `db:"is_active"`
	GbMin       int64     `db:"gb_min"`
	GbMax       int64     `db:"gb_max"`
	DayMin      int64     `db:"day_min"`
	DayMax      int64     `db:"day_max"`
	GbPrice     int64     `db:"gb_price"`
	DayPrice    int64     `db:"day_price"`
	TestEnabled bool      `db:"test_enabled"`
	TestGb      int64     `db:"test_gb"`
	TestDays    int64     `db:"test_days"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (v vpnRow) ToModel() *vpns.VPN {
	return &vpns.VPN{
		ID:          v.ID,
		Name:        v.Name,
		IsActive:    v.IsActive,
		GbMin:       v.GbMin,
		GbMax:       v.GbMax,
		DayMin:      v.DayMin,
		DayMax:      v.DayMax,
		GbPrice:     v.GbPrice,
		DayPrice:    v.DayPrice,
		TestEnabled: v.TestEnabled,
		TestGb:      v.TestGb,
		TestDays:    v.TestDays,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
	}
}

type templateRow struct {
	ID       int64  `db:"id"`
	VpnID    int64  `db:"vpn_id"`
	Title    string `db:"title"`
	Gb       int64  `db:"gb"`
	Days     int64  `db:"days"`
	Price    int64  `db:"price"`
	IsActive bool   `db:"is_active"`
}

func (t templateRow) ToModel() *vpns.Template {
	return &vpns.Template{
		ID:       t.ID,
		VpnID:    t.VpnID,
		Title:    t.Title,
		Gb:       t.Gb,
		Days:     t.Days,
		Price:    t.Price,
		IsActive: t.IsActive,
	}
}

func (s *storageImpl) GetVPN(ctx context.Context, criteria vpns.GetCriteria) (*vpns.VPN, error) {
	query := s.stmpBuilder().
		Select(vpnRowFields).
		From(vpnsTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var v vpnRow
	err = s.db.GetContext(ctx, &v, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return v.ToModel(), nil
}

func (s *storageImpl) ListVPNs(ctx context.Context, criteria vpns.GetCriteria) ([]*vpns.VPN, error) {
	query := s.stmpBuilder().
		Select(vpnRowFields).
		From(vpnsTable).
		OrderBy("id")

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []vpnRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*vpns.VPN
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}

func (s *storageImpl) GetTemplate(ctx context.Context, criteria vpns.TemplateCriteria) (*vpns.Template, error) {
	query := s.stmpBuilder().
		Select(templateRowFields).
		From(vpnTemplatesTable).
		Limit(1)

	if criteria.ID != nil {
		query = query.Where(sq.Eq{"id": *criteria.ID})
	}
	if criteria.VpnID != nil {
		query = query.Where(sq.Eq{"vpn_id": *criteria.VpnID})
	}
	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var t templateRow
	err = s.db.GetContext(ctx, &t, q, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("db.GetContext: %w", err)
	}

	return t.ToModel(), nil
}

func (s *storageImpl) ListTemplates(ctx context.Context, criteria vpns.TemplateCriteria) ([]*vpns.Template, error) {
	query := s.stmpBuilder().
		Select(templateRowFields).
		From(vpnTemplatesTable).
		OrderBy("price")

	if criteria.VpnID != nil {
		query = query.Where(sq.Eq{"vpn_id": *criteria.VpnID})
	}
	if criteria.IsActive != nil {
		query = query.Where(sq.Eq{"is_active": *criteria.IsActive})
	}

	q, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sql query: %w", err)
	}

	var rows []templateRow
	err = s.db.SelectContext(ctx, &rows, q, args...)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext: %w", err)
	}

	var result []*vpns.Template
	for _, row := range rows {
		result = append(result, row.ToModel())
	}

	return result, nil
}
