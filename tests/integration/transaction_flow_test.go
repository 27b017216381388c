package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestTransactionFlow_CreateListUpdateDelete(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "tx@test.com", "password123")

	// Create a few records.
	expenseID := app.addTransaction(t, token, "expense", "Groceries", 250.50)
	app.addTransaction(t, token, "expense", "Travel", 1200)
	app.addTransaction(t, token, "income", "Salary", 50000)

	// List everything.
	rec := app.request("GET", "/api/v1/transactions", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("list failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["total_items"].(float64) != 3 {
		t.Errorf("expected 3 transactions, got %v", result["total_items"])
	}

	// Filter by type.
	rec = app.request("GET", "/api/v1/transactions?type=income", "", token)
	result = parseJSON(t, rec)
	if result["total_items"].(float64) != 1 {
		t.Errorf("expected 1 income transaction, got %v", result["total_items"])
	}

	// Update the expense.
	rec = app.request("PUT", fmt.Sprintf("/api/v1/transactions/%.0f", expenseID),
		`{"category":"Food & Dining","amount":275}`, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update failed: %d %s", rec.Code, rec.Body.String())
	}
	result = parseJSON(t, rec)
	tx := result["transaction"].(map[string]interface{})
	if tx["category"] != "Food & Dining" {
		t.Errorf("expected updated category, got %v", tx["category"])
	}

	// Delete it.
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", expenseID), "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete failed: %d %s", rec.Code, rec.Body.String())
	}

	// It is gone.
	rec = app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", expenseID), "", token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestTransactionFlow_OwnershipIsolation(t *testing.T) {
	app := setupApp(t)
	aliceToken, _ := app.registerUser(t, "alice@test.com", "password123")
	bobToken, _ := app.registerUser(t, "bob@test.com", "password123")

	txID := app.addTransaction(t, aliceToken, "expense", "Shopping", 99)

	// Bob cannot see, update, or delete Alice's record.
	rec := app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", bobToken)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign get, got %d", rec.Code)
	}
	rec = app.request("PUT", fmt.Sprintf("/api/v1/transactions/%.0f", txID), `{"category":"Hijacked"}`, bobToken)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign update, got %d", rec.Code)
	}
	rec = app.request("DELETE", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", bobToken)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for foreign delete, got %d", rec.Code)
	}

	// Alice still has it.
	rec = app.request("GET", fmt.Sprintf("/api/v1/transactions/%.0f", txID), "", aliceToken)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for owner get, got %d", rec.Code)
	}
}

func TestDashboardFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "dash@test.com", "password123")

	app.addTransaction(t, token, "income", "Salary", 50000)
	app.addTransaction(t, token, "expense", "Groceries", 8000)
	app.addTransaction(t, token, "expense", "Travel", 2000)

	rec := app.request("GET", "/api/v1/dashboard", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)

	if result["totalIncome"].(float64) != 50000 {
		t.Errorf("expected totalIncome 50000, got %v", result["totalIncome"])
	}
	if result["totalExpenses"].(float64) != 10000 {
		t.Errorf("expected totalExpenses 10000, got %v", result["totalExpenses"])
	}
	if result["totalBalance"].(float64) != 40000 {
		t.Errorf("expected totalBalance 40000, got %v", result["totalBalance"])
	}
	recent := result["recentTransactions"].([]interface{})
	if len(recent) != 3 {
		t.Errorf("expected 3 recent transactions, got %d", len(recent))
	}
}

func TestExportFlow(t *testing.T) {
	app := setupApp(t)
	token, _ := app.registerUser(t, "export@test.com", "password123")
	app.addTransaction(t, token, "expense", "Groceries", 100)

	rec := app.request("GET", "/api/v1/transactions/export/expense", "", token)
	if rec.Code != http.StatusOK {
		t.Fatalf("export failed: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("unexpected content type: %q", ct)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected workbook bytes in response")
	}
}
