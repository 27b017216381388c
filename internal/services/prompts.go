package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ExpenseCategories is the fixed list of categories the AI is allowed to
// suggest. Anything the model returns outside this list collapses to "Other".
var ExpenseCategories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Education",
	"Travel",
	"Groceries",
	"Personal Care",
	"Other",
}

// MatchCategory matches raw model output against ExpenseCategories,
// case-insensitively and ignoring surrounding whitespace. Non-matches
// collapse to "Other".
func MatchCategory(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	for _, category := range ExpenseCategories {
		if strings.EqualFold(category, trimmed) {
			return category, true
		}
	}
	return "Other", false
}

// formatINR renders an amount as Indian rupees with en-IN digit grouping
// (last three digits, then groups of two). Whole amounts drop the fraction.
// The figures fed to the model must match the aggregated figures exactly, so
// all prompt builders go through this one formatter.
func formatINR(amount decimal.Decimal) string {
	neg := amount.IsNegative()
	fixed := amount.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	v := groupIndianDigits(intPart)
	if frac != "00" {
		v += "." + frac
	}
	out := "₹" + v
	if neg {
		out = "-" + out
	}
	return out
}

func groupIndianDigits(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	groups := []string{digits[len(digits)-3:]}
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(groups, ",")
}

// insightsPrompt formats the aggregated figures into the financial-advisor
// prompt. Output is deterministic for deterministic input: category lines
// keep first-occurrence order, percentages carry one decimal.
func insightsPrompt(snap *financialSnapshot) string {
	var breakdown strings.Builder
	for _, ct := range snap.Breakdown {
		fmt.Fprintf(&breakdown, "- %s: %s\n", ct.Label, formatINR(ct.Total))
	}
	breakdownText := strings.TrimRight(breakdown.String(), "\n")
	if breakdownText == "" {
		breakdownText = "No expenses yet"
	}

	var sources strings.Builder
	for i, tx := range snap.Incomes {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&sources, "- %s: %s\n", tx.Category, formatINR(tx.Amount))
	}
	sourcesText := strings.TrimRight(sources.String(), "\n")
	if sourcesText == "" {
		sourcesText = "No income yet"
	}

	return fmt.Sprintf(`You are a helpful financial advisor. Analyze this user's financial data and provide 3-4 personalized, actionable insights.

Financial Summary:
- Total Income: %s
- Total Expenses: %s
- Net Savings: %s
- Savings Rate: %s%%

Expense Breakdown by Category:
%s

Income Sources:
%s

Provide insights in this JSON format (respond ONLY with valid JSON, no markdown):
{
  "insights": [
    {
      "title": "Brief title",
      "description": "Detailed insight (2-3 sentences)",
      "type": "tip",
      "icon": "bulb"
    }
  ],
  "summary": "One sentence overall financial health summary"
}`,
		formatINR(snap.TotalIncome),
		formatINR(snap.TotalExpenses),
		formatINR(snap.Savings),
		snap.SavingsRate.StringFixed(1),
		breakdownText,
		sourcesText,
	)
}

// chatPrompt formats the user's question together with their financial
// context for the conversational endpoint.
func chatPrompt(snap *financialSnapshot, message string) string {
	var breakdown strings.Builder
	for _, ct := range snap.Breakdown {
		fmt.Fprintf(&breakdown, "- %s: %s\n", ct.Label, formatINR(ct.Total))
	}
	breakdownText := strings.TrimRight(breakdown.String(), "\n")
	if breakdownText == "" {
		breakdownText = "No expenses yet"
	}

	var recent strings.Builder
	for i, tx := range snap.Expenses {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&recent, "- %s: %s on %s\n", tx.Category, formatINR(tx.Amount), tx.Date.Format("02 Jan 2006"))
	}
	recentText := strings.TrimRight(recent.String(), "\n")
	if recentText == "" {
		recentText = "No recent transactions"
	}

	return fmt.Sprintf(`You are a friendly AI financial assistant for an expense tracking app. Answer the user's question based on their financial data.

User's Financial Context:
- Total Income: %s
- Total Expenses: %s
- Net Balance: %s

Expense Categories:
%s

Recent Transactions:
%s

User's Question: "%s"

Provide a helpful, concise response (2-4 sentences). Be friendly and use emojis sparingly. If the question is not related to finances, politely redirect to financial topics.`,
		formatINR(snap.TotalIncome),
		formatINR(snap.TotalExpenses),
		formatINR(snap.TotalIncome.Sub(snap.TotalExpenses)),
		breakdownText,
		recentText,
		message,
	)
}

// categoryPrompt asks the model to pick a category for a free-text expense
// description from the fixed list.
func categoryPrompt(description string) string {
	return fmt.Sprintf(`Given this expense description: "%s"

Suggest the most appropriate category from this list: %s

Respond with ONLY the category name, nothing else.`,
		description,
		strings.Join(ExpenseCategories, ", "),
	)
}
