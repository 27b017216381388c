package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "quantifi/internal/errors"
	"quantifi/internal/models"
)

// dashboardService builds the aggregate dashboard view.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// GetDashboard computes all-time totals, the last-60-days windows, and the
// most recent transactions for a user. Sums are computed in Go over the
// fetched rows so decimal amounts behave identically on every driver.
func (s *dashboardService) GetDashboard(userID uint) (*DashboardSummary, error) {
	var all []models.Transaction
	if err := s.db.Where("user_id = ?", userID).
		Order("date DESC").
		Find(&all).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &DashboardSummary{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
		Last60DaysIncome: PeriodSummary{
			Total:        decimal.Zero,
			Transactions: []models.Transaction{},
		},
		Last60DaysExpenses: PeriodSummary{
			Total:        decimal.Zero,
			Transactions: []models.Transaction{},
		},
	}

	cutoff := time.Now().AddDate(0, 0, -60)
	var recentIncome, recentExpense []models.Transaction

	for _, tx := range all {
		switch tx.Type {
		case models.TransactionTypeIncome:
			summary.TotalIncome = summary.TotalIncome.Add(tx.Amount)
			if !tx.Date.Before(cutoff) {
				summary.Last60DaysIncome.Total = summary.Last60DaysIncome.Total.Add(tx.Amount)
				summary.Last60DaysIncome.Transactions = append(summary.Last60DaysIncome.Transactions, tx)
			}
			if len(recentIncome) < 5 {
				recentIncome = append(recentIncome, tx)
			}
		case models.TransactionTypeExpense:
			summary.TotalExpenses = summary.TotalExpenses.Add(tx.Amount)
			if !tx.Date.Before(cutoff) {
				summary.Last60DaysExpenses.Total = summary.Last60DaysExpenses.Total.Add(tx.Amount)
				summary.Last60DaysExpenses.Transactions = append(summary.Last60DaysExpenses.Transactions, tx)
			}
			if len(recentExpense) < 5 {
				recentExpense = append(recentExpense, tx)
			}
		}
	}

	summary.TotalBalance = summary.TotalIncome.Sub(summary.TotalExpenses)

	recent := append(recentIncome, recentExpense...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].Date.After(recent[j].Date)
	})
	if recent == nil {
		recent = []models.Transaction{}
	}
	summary.RecentTransactions = recent

	return summary, nil
}
