package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"quantifi/internal/cache"
	apperrors "quantifi/internal/errors"
	"quantifi/internal/gemini"
	"quantifi/internal/logger"
	"quantifi/internal/models"
)

// Record limits for the aggregation windows. Insights look at a wider slice
// of history than chat because the generated payload is cached.
const (
	insightsRecordLimit = 50
	chatRecordLimit     = 30
)

// Insight is a single advisory card shown to the user.
type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
}

// FinancialSummary carries the aggregated figures alongside the insights so
// the client never has to recompute them.
type FinancialSummary struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Savings       float64 `json:"savings"`
	SavingsRate   float64 `json:"savingsRate"`
}

// InsightsResponse is the payload of GET /ai/insights.
type InsightsResponse struct {
	Success          bool              `json:"success"`
	Insights         []Insight         `json:"insights"`
	Summary          string            `json:"summary"`
	FinancialSummary *FinancialSummary `json:"financialSummary,omitempty"`
	Cached           bool              `json:"cached"`
	CacheExpiresIn   string            `json:"cacheExpiresIn,omitempty"`
}

// ChatContext carries the figures the chat answer was grounded on.
type ChatContext struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Balance       float64 `json:"balance"`
}

// ChatResponse is the payload of POST /ai/chat.
type ChatResponse struct {
	Success  bool         `json:"success"`
	Response string       `json:"response"`
	Context  *ChatContext `json:"context,omitempty"`
}

// CategorySuggestion is the payload of POST /ai/suggest-category.
type CategorySuggestion struct {
	Success           bool   `json:"success"`
	SuggestedCategory string `json:"suggestedCategory"`
	Cached            bool   `json:"cached"`
}

// advisorService implements the AI advisory endpoints: aggregation,
// fingerprinting, caching, prompt construction, and response parsing with
// tiered fallbacks. AI failures never escape as errors; they degrade into
// placeholder payloads.
type advisorService struct {
	db         *gorm.DB
	insights   *cache.InsightCache
	categories *cache.CategoryCache
	provider   GeneratorProvider
}

// NewAdvisorService creates a new AdvisorServicer.
func NewAdvisorService(db *gorm.DB, insights *cache.InsightCache, categories *cache.CategoryCache, provider GeneratorProvider) AdvisorServicer {
	return &advisorService{
		db:         db,
		insights:   insights,
		categories: categories,
		provider:   provider,
	}
}

// categoryTotal is one line of the per-category expense breakdown.
type categoryTotal struct {
	Label string
	Total decimal.Decimal
}

// financialSnapshot is the pure aggregation of a user's most recent records.
type financialSnapshot struct {
	Incomes       []models.Transaction
	Expenses      []models.Transaction
	TotalIncome   decimal.Decimal
	TotalExpenses decimal.Decimal
	Savings       decimal.Decimal
	SavingsRate   decimal.Decimal
	Breakdown     []categoryTotal
}

// aggregate fetches the user's most recent limit income and limit expense
// records (newest first) and reduces them to summary figures. Read-only.
func (s *advisorService) aggregate(userID uint, limit int) (*financialSnapshot, error) {
	snap := &financialSnapshot{
		TotalIncome:   decimal.Zero,
		TotalExpenses: decimal.Zero,
	}

	if err := s.db.Where("user_id = ? AND type = ?", userID, models.TransactionTypeIncome).
		Order("date DESC").
		Limit(limit).
		Find(&snap.Incomes).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.db.Where("user_id = ? AND type = ?", userID, models.TransactionTypeExpense).
		Order("date DESC").
		Limit(limit).
		Find(&snap.Expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	for _, tx := range snap.Incomes {
		snap.TotalIncome = snap.TotalIncome.Add(tx.Amount)
	}

	// Per-category breakdown keeps first-occurrence order so prompt output
	// is deterministic. Unlabeled expenses bucket under "Other".
	index := make(map[string]int)
	for _, tx := range snap.Expenses {
		snap.TotalExpenses = snap.TotalExpenses.Add(tx.Amount)

		label := tx.Category
		if label == "" {
			label = "Other"
		}
		if i, ok := index[label]; ok {
			snap.Breakdown[i].Total = snap.Breakdown[i].Total.Add(tx.Amount)
		} else {
			index[label] = len(snap.Breakdown)
			snap.Breakdown = append(snap.Breakdown, categoryTotal{Label: label, Total: tx.Amount})
		}
	}

	snap.Savings = snap.TotalIncome.Sub(snap.TotalExpenses)
	if snap.TotalIncome.IsPositive() {
		snap.SavingsRate = snap.Savings.Div(snap.TotalIncome).Mul(decimal.NewFromInt(100)).Round(1)
	} else {
		snap.SavingsRate = decimal.Zero
	}

	return snap, nil
}

// Fingerprint derives the change-detection digest from the fetched record
// sets: income sum, expense sum, income count, expense count. Cheap and
// collision-prone on purpose; used only as a heuristic gate.
func (snap *financialSnapshot) Fingerprint() string {
	return fmt.Sprintf("%s-%s-%d-%d",
		snap.TotalIncome.String(),
		snap.TotalExpenses.String(),
		len(snap.Incomes),
		len(snap.Expenses),
	)
}

// summary converts the decimal figures to the JSON shape the client expects.
func (snap *financialSnapshot) summary() *FinancialSummary {
	return &FinancialSummary{
		TotalIncome:   snap.TotalIncome.InexactFloat64(),
		TotalExpenses: snap.TotalExpenses.InexactFloat64(),
		Savings:       snap.Savings.InexactFloat64(),
		SavingsRate:   snap.SavingsRate.InexactFloat64(),
	}
}

// GetInsights serves GET /ai/insights with the full fallback ladder:
// cached payload, zero-data starter, generated insights, parse fallback,
// and provider-error advisory.
func (s *advisorService) GetInsights(ctx context.Context, userID uint) (*InsightsResponse, error) {
	gen, genErr := s.provider(ctx)
	if errors.Is(genErr, gemini.ErrNotConfigured) {
		return notConfiguredInsights(), nil
	}

	snap, err := s.aggregate(userID, insightsRecordLimit)
	if err != nil {
		return nil, err
	}
	fingerprint := snap.Fingerprint()

	if s.insights.IsValid(userID, fingerprint) {
		if entry, ok := s.insights.Get(userID); ok {
			if cached, ok := entry.Payload.(*InsightsResponse); ok {
				logger.Get().Infow("returning cached AI insights", "user_id", userID)
				out := *cached
				out.Cached = true
				out.CacheExpiresIn = s.insights.Remaining(userID).Truncate(time.Second).String()
				return &out, nil
			}
		}
	}

	if len(snap.Incomes) == 0 && len(snap.Expenses) == 0 {
		resp := &InsightsResponse{
			Success: true,
			Insights: []Insight{{
				Title:       "Start Tracking!",
				Description: "Add some income and expenses to get personalized AI insights about your financial health.",
				Type:        "info",
				Icon:        "chart",
			}},
			Summary:          "Add transactions to unlock AI-powered financial insights!",
			FinancialSummary: snap.summary(),
			Cached:           false,
		}
		s.insights.Put(userID, resp, fingerprint)
		return resp, nil
	}

	if genErr != nil {
		return advisoryFallback(genErr), nil
	}

	logger.Get().Infow("calling Gemini API for insights", "user_id", userID)
	text, err := gen.GenerateText(ctx, insightsPrompt(snap))
	if err != nil {
		logger.Get().Warnw("AI insights generation failed", "user_id", userID, "error", err)
		return advisoryFallback(err), nil
	}

	resp := s.parseInsights(text, snap)
	s.insights.Put(userID, resp, fingerprint)
	return resp, nil
}

// parseInsights extracts the first brace-delimited JSON object from the raw
// model output. Parse failures degrade to the fixed "Keep Tracking!" payload
// (which still carries the real financial summary).
func (s *advisorService) parseInsights(text string, snap *financialSnapshot) *InsightsResponse {
	if raw, ok := extractJSONObject(text); ok {
		var parsed struct {
			Insights []Insight `json:"insights"`
			Summary  string    `json:"summary"`
		}
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			return &InsightsResponse{
				Success:          true,
				Insights:         parsed.Insights,
				Summary:          parsed.Summary,
				FinancialSummary: snap.summary(),
				Cached:           false,
				CacheExpiresIn:   "5 minutes",
			}
		} else {
			logger.Get().Warnw("failed to parse AI insights JSON", "error", err)
		}
	}

	return &InsightsResponse{
		Success: true,
		Insights: []Insight{{
			Title:       "Keep Tracking!",
			Description: "Continue logging your income and expenses to get more personalized insights.",
			Type:        "info",
			Icon:        "chart",
		}},
		Summary:          "Keep tracking your finances for better insights!",
		FinancialSummary: snap.summary(),
		Cached:           false,
	}
}

// extractJSONObject returns the substring from the first '{' to the last '}'.
func extractJSONObject(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// advisoryFallback is the final fallback tier: the AI call itself failed.
// The message branches on the error text; this tier is never cached.
func advisoryFallback(err error) *InsightsResponse {
	description := "We couldn't generate insights right now. Please try again later."
	switch {
	case strings.Contains(err.Error(), "429"):
		description = "Rate limit reached. Please wait a minute before refreshing for AI insights."
	case strings.Contains(err.Error(), "API_KEY"):
		description = "Please add GEMINI_API_KEY to your .env file to enable AI insights."
	}

	return &InsightsResponse{
		Success: true,
		Insights: []Insight{{
			Title:       "AI Temporarily Unavailable",
			Description: description,
			Type:        "warning",
			Icon:        "warning",
		}},
		Summary: "AI insights are temporarily unavailable.",
		Cached:  false,
	}
}

func notConfiguredInsights() *InsightsResponse {
	return &InsightsResponse{
		Success: true,
		Insights: []Insight{{
			Title:       "AI Not Configured",
			Description: "Add your GEMINI_API_KEY to .env file to enable AI insights. Get a free key at makersuite.google.com",
			Type:        "info",
			Icon:        "key",
		}},
		Summary: "Configure your Gemini API key to unlock AI-powered insights!",
		Cached:  false,
	}
}

// Chat serves POST /ai/chat. Every message is distinct by design, so chat
// responses are never cached.
func (s *advisorService) Chat(ctx context.Context, userID uint, message string) (*ChatResponse, error) {
	gen, genErr := s.provider(ctx)
	if errors.Is(genErr, gemini.ErrNotConfigured) {
		return &ChatResponse{
			Success:  true,
			Response: "AI chat is not configured yet. Please add your GEMINI_API_KEY to the backend .env file. You can get a free key at makersuite.google.com",
		}, nil
	}

	snap, err := s.aggregate(userID, chatRecordLimit)
	if err != nil {
		return nil, err
	}

	if genErr != nil {
		return chatFallback(genErr), nil
	}

	text, err := gen.GenerateText(ctx, chatPrompt(snap, message))
	if err != nil {
		logger.Get().Warnw("AI chat generation failed", "user_id", userID, "error", err)
		return chatFallback(err), nil
	}

	return &ChatResponse{
		Success:  true,
		Response: text,
		Context: &ChatContext{
			TotalIncome:   snap.TotalIncome.InexactFloat64(),
			TotalExpenses: snap.TotalExpenses.InexactFloat64(),
			Balance:       snap.TotalIncome.Sub(snap.TotalExpenses).InexactFloat64(),
		},
	}, nil
}

func chatFallback(err error) *ChatResponse {
	response := "Sorry, I couldn't process that right now. Please make sure your Gemini API key is configured correctly in the .env file. 🔧"
	if strings.Contains(err.Error(), "429") {
		response = "I'm getting too many requests right now. Please wait a moment and try again! ⏳"
	}
	return &ChatResponse{Success: true, Response: response}
}

// SuggestCategory serves POST /ai/suggest-category. Suggestions are cached
// by the normalized description; a cache hit never touches the gateway.
func (s *advisorService) SuggestCategory(ctx context.Context, description string) (*CategorySuggestion, error) {
	if category, ok := s.categories.Get(description); ok {
		return &CategorySuggestion{
			Success:           true,
			SuggestedCategory: category,
			Cached:            true,
		}, nil
	}

	gen, genErr := s.provider(ctx)
	if genErr != nil {
		return &CategorySuggestion{Success: true, SuggestedCategory: "Other", Cached: false}, nil
	}

	text, err := gen.GenerateText(ctx, categoryPrompt(description))
	if err != nil {
		logger.Get().Warnw("AI category suggestion failed", "error", err)
		return &CategorySuggestion{Success: true, SuggestedCategory: "Other", Cached: false}, nil
	}

	category, _ := MatchCategory(text)
	s.categories.Put(description, category)

	return &CategorySuggestion{
		Success:           true,
		SuggestedCategory: category,
		Cached:            false,
	}, nil
}
