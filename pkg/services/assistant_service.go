package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"sales-chat-api/pkg/llm"
	"sales-chat-api/pkg/models"
)

// promptRowLimit caps how many records are serialized into the assistant
// prompt; large datasets are sampled from the front.
const promptRowLimit = 200

// AssistantService delegates a query to the external text-generation
// collaborator. It never blocks past the configured timeout and its output
// is always run through the post-processing pipeline; on any failure the
// caller falls back to the local rule-based engine.
type AssistantService struct {
	client  *llm.Client
	timeout time.Duration
	wordCap int
}

// NewAssistantService creates the assistant boundary. A nil client (no
// endpoint configured) disables delegation entirely.
func NewAssistantService(client *llm.Client, timeout time.Duration, wordCap int) *AssistantService {
	return &AssistantService{client: client, timeout: timeout, wordCap: wordCap}
}

// Enabled reports whether an external endpoint is configured.
func (s *AssistantService) Enabled() bool {
	return s.client != nil
}

// Model returns the configured model name, for response metadata.
func (s *AssistantService) Model() string {
	if s.client == nil {
		return ""
	}
	return s.client.Model()
}

// Answer sends the query with the serialized dataset, metrics, context and
// recent history, then post-processes the reply.
func (s *AssistantService) Answer(ctx context.Context, query string, records []models.SalesRecord, metrics models.Metrics, convCtx models.ConversationContext, history []models.ChatHistoryEntry, currency string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("assistant is not configured")
	}

	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := []llm.ChatMessage{
		{Role: "system", Content: s.buildSystemPrompt(records, metrics, convCtx, currency)},
	}
	for _, turn := range history {
		role := turn.Role
		if role != "user" && role != "assistant" {
			role = "user"
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: turn.Message})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: query})

	reply, err := s.client.ChatCompletion(reqCtx, messages, 800, 0.2)
	if err != nil {
		return "", fmt.Errorf("assistant call failed: %w", err)
	}

	post := NewPostProcessor(currency, s.wordCap)
	return post.Apply(reply), nil
}

func (s *AssistantService) buildSystemPrompt(records []models.SalesRecord, metrics models.Metrics, convCtx models.ConversationContext, currency string) string {
	sample := records
	if len(sample) > promptRowLimit {
		sample = sample[:promptRowLimit]
	}
	data, _ := json.Marshal(sample)
	metricsJSON, _ := json.Marshal(metrics)

	var b strings.Builder
	b.WriteString("You are a sales analytics assistant. Answer only from the dataset below.\n")
	fmt.Fprintf(&b, "All monetary values are in %s. Never use any other currency symbol.\n", currency)
	fmt.Fprintf(&b, "Dataset metrics: %s\n", metricsJSON)
	if convCtx.LastDataType != "" {
		fmt.Fprintf(&b, "Conversation context: topic=%s type=%s count=%d\n",
			convCtx.LastTopic, convCtx.LastDataType, convCtx.LastCount)
	}
	fmt.Fprintf(&b, "Dataset (%d of %d rows): %s\n", len(sample), len(records), data)
	b.WriteString("Keep answers short, use Markdown tables for lists, and stay on sales topics.")
	return b.String()
}
