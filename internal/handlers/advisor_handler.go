package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "quantifi/internal/errors"
	"quantifi/internal/services"
)

// AdvisorHandler handles the AI advisory endpoints. The insight and chat
// endpoints always answer 200 with a payload; AI failures surface as
// placeholder content, never as HTTP errors. Only malformed requests and
// database failures produce error statuses.
type AdvisorHandler struct {
	advisorService services.AdvisorServicer
}

// NewAdvisorHandler creates a new AdvisorHandler
func NewAdvisorHandler(advisorService services.AdvisorServicer) *AdvisorHandler {
	return &AdvisorHandler{advisorService: advisorService}
}

// ChatRequest represents the chat request payload.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// SuggestCategoryRequest represents the category suggestion payload.
type SuggestCategoryRequest struct {
	Description string `json:"description" binding:"required"`
}

// GetInsights handles the insights request
// @Summary     Get AI financial insights
// @Description Get personalized AI-generated insights on the user's recent finances
// @Tags        ai
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.InsightsResponse "Insights payload"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ai/insights [get]
func (h *AdvisorHandler) GetInsights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp, err := h.advisorService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Chat handles the conversational request
// @Summary     Chat with the AI assistant
// @Description Ask the AI assistant a question grounded in the user's financial data
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body ChatRequest true "User message"
// @Success     200 {object} services.ChatResponse "Chat response"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /ai/chat [post]
func (h *AdvisorHandler) Chat(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Message is required"))
		return
	}

	resp, err := h.advisorService.Chat(c.Request.Context(), userID, req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// SuggestCategory handles the category suggestion request
// @Summary     Suggest an expense category
// @Description Suggest a category for a free-text expense description
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body SuggestCategoryRequest true "Expense description"
// @Success     200 {object} services.CategorySuggestion "Suggested category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /ai/suggest-category [post]
func (h *AdvisorHandler) SuggestCategory(c *gin.Context) {
	if _, err := getUserID(c); err != nil {
		respondWithError(c, err)
		return
	}

	var req SuggestCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Description is required"))
		return
	}

	resp, err := h.advisorService.SuggestCategory(c.Request.Context(), req.Description)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
