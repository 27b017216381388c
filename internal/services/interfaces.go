package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"quantifi/internal/models"
	"quantifi/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, name, profileImageURL string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	UpdateUser(userID uint, fields UserUpdateFields) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
}

// UserUpdateFields holds the optional fields of a profile update. Nil means
// "leave unchanged"; a non-nil empty ProfileImageURL clears the image.
// Changing the password requires both OldPassword and NewPassword.
type UserUpdateFields struct {
	Name            *string
	Email           *string
	ProfileImageURL *string
	OldPassword     string
	NewPassword     string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	Type     *models.TransactionType
	FromDate *time.Time
	ToDate   *time.Time
}

// TransactionUpdateFields holds the optional fields of a transaction update.
// Nil means "leave unchanged".
type TransactionUpdateFields struct {
	Category *string
	Amount   *decimal.Decimal
	Icon     *string
	Date     *time.Time
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, txType models.TransactionType, amount decimal.Decimal, category, icon string, date time.Time) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, fields TransactionUpdateFields) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
	ExportWorkbook(userID uint, txType models.TransactionType) (*excelize.File, error)
}

// PeriodSummary holds the total and backing transactions for a date window.
type PeriodSummary struct {
	Total        decimal.Decimal      `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

// DashboardSummary is the aggregate view returned by GET /dashboard.
type DashboardSummary struct {
	TotalBalance       decimal.Decimal      `json:"totalBalance"`
	TotalIncome        decimal.Decimal      `json:"totalIncome"`
	TotalExpenses      decimal.Decimal      `json:"totalExpenses"`
	Last60DaysIncome   PeriodSummary        `json:"last60DaysIncome"`
	Last60DaysExpenses PeriodSummary        `json:"last60DaysExpenses"`
	RecentTransactions []models.Transaction `json:"recentTransactions"`
}

// DashboardServicer defines the contract for the dashboard aggregate view.
type DashboardServicer interface {
	GetDashboard(userID uint) (*DashboardSummary, error)
}

// AdvisorServicer defines the contract for the AI advisory endpoints.
// Implementations degrade AI failures into placeholder payloads; a non-nil
// error is returned only for database failures.
type AdvisorServicer interface {
	GetInsights(ctx context.Context, userID uint) (*InsightsResponse, error)
	Chat(ctx context.Context, userID uint, message string) (*ChatResponse, error)
	SuggestCategory(ctx context.Context, description string) (*CategorySuggestion, error)
}

// TextGenerator is the outbound AI gateway consumed by the advisor service.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeneratorProvider hands out the text generator, deferring construction
// (and the missing-credential check) to the first call that needs it.
type GeneratorProvider func(ctx context.Context) (TextGenerator, error)
