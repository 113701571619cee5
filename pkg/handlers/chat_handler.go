package handlers

import (
	"log"
	"net/http"
	"time"

	"sales-chat-api/pkg/models"
	"sales-chat-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ChatHandler answers natural-language questions about the loaded dataset.
type ChatHandler struct {
	dataset   *services.DatasetService
	engine    *services.QueryEngineService
	contexts  *services.ContextService
	assistant *services.AssistantService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(dataset *services.DatasetService, engine *services.QueryEngineService, contexts *services.ContextService, assistant *services.AssistantService) *ChatHandler {
	return &ChatHandler{
		dataset:   dataset,
		engine:    engine,
		contexts:  contexts,
		assistant: assistant,
	}
}

// Chat handles one conversational turn. The local rule-based engine runs
// first; when it has no answer and an external assistant is configured,
// the query is delegated with a timeout and falls back to the local help
// message on any failure. Turns within a session are serialized: a second
// request while one is outstanding is rejected, so two assistant calls can
// never interleave context writes.
func (h *ChatHandler) Chat(c *gin.Context) {
	if InMaintenance() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Server is in maintenance mode"})
		return
	}

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	sessionID := h.contexts.EnsureSession(req.SessionID)
	if !h.contexts.BeginTurn(sessionID) {
		c.JSON(http.StatusConflict, gin.H{"error": "a request for this session is already being processed"})
		return
	}
	defer h.contexts.EndTurn(sessionID)

	records := h.dataset.Records()
	convCtx := h.contexts.Context(sessionID)
	history := h.contexts.History(sessionID)
	h.contexts.AppendHistory(sessionID, "user", req.Message)

	answer, newCtx, matched := h.engine.Answer(req.Message, records, convCtx)
	source := "rules"
	model := ""

	if matched {
		h.contexts.SetContext(sessionID, newCtx)
	} else if h.assistant.Enabled() && len(records) > 0 {
		reply, err := h.assistant.Answer(
			c.Request.Context(), req.Message, records, h.dataset.Metrics(),
			convCtx, history, h.dataset.Currency(),
		)
		if err != nil {
			log.Printf("assistant unavailable, answering locally: %v", err)
			answer = "_(assistant unavailable, answering from local rules)_\n\n" + answer
		} else {
			answer = reply
			source = "assistant"
			model = h.assistant.Model()
		}
	}

	h.contexts.AppendHistory(sessionID, "assistant", answer)

	c.JSON(http.StatusOK, models.ChatResponse{
		Response:  answer,
		Timestamp: time.Now().Format(time.RFC3339),
		SessionID: sessionID,
		Source:    source,
		Model:     model,
	})
}

// GetHistory returns the recent turns of a session.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	sessionID := c.Param("sessionID")
	history := h.contexts.History(sessionID)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": sessionID,
		"history": history,
		"count":   len(history),
	})
}
