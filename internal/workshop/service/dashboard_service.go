package service

import (
	"context"

	"gorm.io/gorm"
)

// DashboardService 看板服务
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService 创建看板服务
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Overview 车间总览
type Overview struct {
	TotalMolds      int64 `json:"total_molds"`
	TotalComponents int64 `json:"total_components"`
	TotalMachines   int64 `json:"total_machines"`
	OpenEvents      int64 `json:"open_events"`
	PendingRequests int64 `json:"pending_requests"`
}

// GetOverview 获取车间总览
func (s *DashboardService) GetOverview(ctx context.Context) (*Overview, error) {
	overview := &Overview{}
	row := s.db.WithContext(ctx).Raw(`
		SELECT
			(SELECT COUNT(*) FROM molds WHERE is_deleted = false) as total_molds,
			(SELECT COUNT(*) FROM components WHERE is_deleted = false) as total_components,
			(SELECT COUNT(*) FROM machines WHERE is_deleted = false) as total_machines,
			(SELECT COUNT(*) FROM events WHERE status = 'open') as open_events,
			(SELECT COUNT(*) FROM maintenance_requests WHERE status = 'pending') as pending_requests
	`).Row()

	if err := row.Scan(
		&overview.TotalMolds,
		&overview.TotalComponents,
		&overview.TotalMachines,
		&overview.OpenEvents,
		&overview.PendingRequests,
	); err != nil {
		return nil, err
	}
	return overview, nil
}

// StatusCount 状态分布项
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// GetMoldStatusDistribution 获取模具状态分布
func (s *DashboardService) GetMoldStatusDistribution(ctx context.Context) ([]StatusCount, error) {
	var counts []StatusCount
	err := s.db.WithContext(ctx).Raw(`
		SELECT status, COUNT(*) as count
		FROM molds
		WHERE is_deleted = false
		GROUP BY status
		ORDER BY count DESC
	`).Scan(&counts).Error
	return counts, err
}

// ScrapRate 零件废品率
type ScrapRate struct {
	ComponentID    string  `json:"component_id"`
	ComponentCode  string  `json:"component_code"`
	GoodPieces     int64   `json:"good_pieces"`
	ScrappedPieces int64   `json:"scrapped_pieces"`
	ScrapRatePct   float64 `json:"scrap_rate_pct"`
}

// GetScrapRates 获取各零件废品率（生产总量降序）
func (s *DashboardService) GetScrapRates(ctx context.Context) ([]ScrapRate, error) {
	var rates []ScrapRate
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			c.id as component_id,
			c.code as component_code,
			COALESCE(SUM(p.good_pieces), 0) as good_pieces,
			COALESCE(SUM(p.scrapped_pieces), 0) as scrapped_pieces,
			CASE WHEN COALESCE(SUM(p.good_pieces + p.scrapped_pieces), 0) > 0
				THEN SUM(p.scrapped_pieces)::float / SUM(p.good_pieces + p.scrapped_pieces) * 100
				ELSE 0
			END as scrap_rate_pct
		FROM components c
		LEFT JOIN production_logs p ON p.component_id = c.id
		WHERE c.is_deleted = false
		GROUP BY c.id, c.code
		ORDER BY good_pieces + scrapped_pieces DESC
	`).Scan(&rates).Error
	return rates, err
}

// MaintenanceCost 来源维护成本
type MaintenanceCost struct {
	SourceID   string  `json:"source_id"`
	SourceType string  `json:"source_type"`
	EventCount int64   `json:"event_count"`
	TotalCost  float64 `json:"total_cost"`
}

// GetMaintenanceCosts 获取各模具/设备的维护成本合计（成本降序）
func (s *DashboardService) GetMaintenanceCosts(ctx context.Context) ([]MaintenanceCost, error) {
	var costs []MaintenanceCost
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			source_id,
			source_type,
			COUNT(*) as event_count,
			COALESCE(SUM(cost), 0) as total_cost
		FROM events
		WHERE cost IS NOT NULL
		GROUP BY source_id, source_type
		ORDER BY total_cost DESC
	`).Scan(&costs).Error
	return costs, err
}

// MonthlyCost 月度维护成本
type MonthlyCost struct {
	Month      string  `json:"month"`
	EventCount int64   `json:"event_count"`
	TotalCost  float64 `json:"total_cost"`
}

// GetMonthlyMaintenanceCosts 获取按月汇总的维护成本（近12个月）
func (s *DashboardService) GetMonthlyMaintenanceCosts(ctx context.Context) ([]MonthlyCost, error) {
	var costs []MonthlyCost
	err := s.db.WithContext(ctx).Raw(`
		SELECT
			TO_CHAR(created_at, 'YYYY-MM') as month,
			COUNT(*) as event_count,
			COALESCE(SUM(cost), 0) as total_cost
		FROM events
		WHERE cost IS NOT NULL
			AND created_at >= NOW() - INTERVAL '12 months'
		GROUP BY month
		ORDER BY month DESC
	`).Scan(&costs).Error
	return costs, err
}
