// Command seed fills the database with demo data for local development:
// one demo user plus a few months of randomized income and expense records.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"quantifi/internal/database"
	"quantifi/internal/logger"
	"quantifi/internal/models"
	"quantifi/internal/services"
)

const (
	demoEmail    = "demo@quantifi.app"
	demoPassword = "demo-password-123"

	expenseCount = 120
	incomeCount  = 12
)

var incomeSources = []string{"Salary", "Freelance", "Dividends", "Interest", "Rental Income"}

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Seed error: %v", err)
	}
}

func run() error {
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	db := dbManager.DB()
	userService := services.NewUserService(db)
	transactionService := services.NewTransactionService(db)

	user, err := userService.CreateUser(demoEmail, demoPassword, gofakeit.Name(), "")
	if err != nil {
		return fmt.Errorf("failed to create demo user: %w", err)
	}
	logger.Get().Infow("created demo user", "email", demoEmail, "user_id", user.ID)

	now := time.Now()

	for i := 0; i < incomeCount; i++ {
		amount := decimal.NewFromFloat(gofakeit.Price(20000, 90000)).Round(2)
		date := now.AddDate(0, 0, -gofakeit.Number(0, 180))
		source := incomeSources[gofakeit.Number(0, len(incomeSources)-1)]

		if _, err := transactionService.CreateTransaction(
			user.ID, models.TransactionTypeIncome, amount, source, "money", date,
		); err != nil {
			return fmt.Errorf("failed to create income record: %w", err)
		}
	}

	for i := 0; i < expenseCount; i++ {
		amount := decimal.NewFromFloat(gofakeit.Price(50, 5000)).Round(2)
		date := now.AddDate(0, 0, -gofakeit.Number(0, 180))
		category := services.ExpenseCategories[gofakeit.Number(0, len(services.ExpenseCategories)-1)]

		if _, err := transactionService.CreateTransaction(
			user.ID, models.TransactionTypeExpense, amount, category, "cart", date,
		); err != nil {
			return fmt.Errorf("failed to create expense record: %w", err)
		}
	}

	logger.Get().Infow("seed complete",
		"incomes", incomeCount,
		"expenses", expenseCount,
		"login", demoEmail,
		"password", demoPassword,
	)
	return nil
}
