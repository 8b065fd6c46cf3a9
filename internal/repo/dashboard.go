package repo

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shivgems/internal/models"
)

type DashboardStats struct {
	TotalSales     decimal.Decimal `json:"totalSales"`
	TotalOrders    int64           `json:"totalOrders"`
	TotalCustomers int64           `json:"totalCustomers"`
	TotalProducts  int64           `json:"totalProducts"`
}

func (r *GormRepo) DashboardStats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	db := r.DB.WithContext(ctx)

	if err := db.Model(&models.Order{}).Count(&s.TotalOrders).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&s.TotalCustomers).Error; err != nil {
		return s, err
	}
	if err := db.Model(&models.Product{}).Count(&s.TotalProducts).Error; err != nil {
		return s, err
	}

	row := db.Model(&models.Order{}).
		Where("status <> ?", models.OrderStatusCancelled).
		Select("COALESCE(SUM(total_amount), 0)").
		Row()
	if err := row.Scan(&s.TotalSales); err != nil {
		return s, err
	}
	return s, nil
}
