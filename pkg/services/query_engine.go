package services

import (
	"fmt"
	"regexp"
	"strings"

	"sales-chat-api/pkg/models"
)

// QueryEngineService orchestrates the rule-based pipeline: structured
// classification, context-aware follow-ups, pattern handlers, debug
// commands and the help fallback, in that order. The first stage to
// produce an answer wins.
type QueryEngineService struct {
	vocabulary *VocabularyService
	classifier *ClassifierService
	resolver   *ResolverService
	executor   *ExecutorService
	formatter  *FormatterService
}

// NewQueryEngineService wires the engine components together.
func NewQueryEngineService(formatter *FormatterService) *QueryEngineService {
	return &QueryEngineService{
		vocabulary: NewVocabularyService(),
		classifier: NewClassifierService(),
		resolver:   NewResolverService(),
		executor:   NewExecutorService(),
		formatter:  formatter,
	}
}

// followUpPattern matches bare "top 5" / "show 3" / "need 10" queries that
// carry a count but no dimension of their own.
var followUpPattern = regexp.MustCompile(`^(?:top|show|need)\s+(\d+)\s*$`)

// Answer runs the dispatch chain. It returns the answer text, the updated
// conversation context (replace-on-success; unchanged otherwise) and
// whether any stage before the help fallback matched.
func (s *QueryEngineService) Answer(rawQuery string, records []models.SalesRecord, ctx models.ConversationContext) (string, models.ConversationContext, bool) {
	query := strings.ToLower(strings.TrimSpace(rawQuery))
	if query == "" {
		return s.helpMessage(), ctx, false
	}

	vocab := s.vocabulary.Extract(records)

	// Debug/help commands bypass the data guard so they work pre-upload.
	if answer := s.handleCommands(query, vocab, ctx); answer != "" {
		return answer, ctx, true
	}

	if len(records) == 0 {
		return "No data is loaded yet. Upload a dataset to get started.", ctx, true
	}

	// (a) structured pipeline
	analysis := s.buildAnalysis(query, vocab, ctx)
	if s.worthExecuting(analysis) {
		result := s.executor.Execute(analysis, records)
		if result != nil && result.Kind != models.ResultNoData {
			return s.formatter.Format(result), s.updateContext(ctx, analysis), true
		}
		if result != nil && result.Kind == models.ResultNoData &&
			(hasEntityFilter(analysis.Entities) || len(analysis.Entities.Periods) > 0) {
			// A recognized entity or period with no matching rows is still
			// an answer; falling through to help would hide the filter.
			return s.formatter.Format(result), ctx, true
		}
	}

	// (b) context-aware follow-up: "top 5" after "top customers"
	if m := followUpPattern.FindStringSubmatch(query); m != nil && ctx.LastDataType != "" {
		count := s.resolver.ExtractCount(m[1], DefaultFollowUpCount)
		followUp := models.QueryAnalysis{
			Intent:   IntentRanking,
			GroupBy:  ctx.LastDataType,
			Entities: models.Entities{Count: count, Metric: "amount"},
		}
		result := s.executor.Execute(followUp, records)
		if result != nil && result.Kind != models.ResultNoData {
			return s.formatter.Format(result), s.updateContext(ctx, followUp), true
		}
	}

	// (c) column-specific pattern handlers
	if answer, newCtx, ok := s.runPatternHandlers(query, records, ctx); ok {
		return answer, newCtx, true
	}

	// (e) generic fallback
	return s.helpMessage(), ctx, false
}

// buildAnalysis assembles the ephemeral QueryAnalysis for one query. The
// conversation context is consulted when a ranking query names no
// dimension of its own.
func (s *QueryEngineService) buildAnalysis(query string, vocab models.Vocabulary, ctx models.ConversationContext) models.QueryAnalysis {
	intent := s.classifier.ClassifyIntent(query)
	analysis := models.QueryAnalysis{
		Intent:    intent,
		Operation: s.classifier.DetectOperation(query),
		GroupBy:   s.classifier.DetectGrouping(query),
		Entities:  s.resolver.Resolve(query, vocab),
	}
	analysis.Modifiers = models.Modifiers{
		MonthWise:  strings.Contains(query, "month wise") || strings.Contains(query, "monthwise"),
		TopN:       analysis.Entities.Count > 0,
		Bottom:     analysis.Operation == OpBottom,
		Total:      strings.Contains(query, "total"),
		Average:    analysis.Operation == OpAverage,
		Comparison: intent == IntentComparison,
	}
	if intent == IntentRanking && analysis.GroupBy == "" && ctx.LastDataType != "" {
		analysis.GroupBy = ctx.LastDataType
	}
	return analysis
}

// worthExecuting reports whether the structured pipeline recognized
// anything at all; a fully generic query falls through to later stages.
func (s *QueryEngineService) worthExecuting(a models.QueryAnalysis) bool {
	return a.Intent != IntentGeneral ||
		a.Operation != OpList ||
		a.GroupBy != "" ||
		hasEntityFilter(a.Entities) ||
		len(a.Entities.Periods) > 0
}

func hasEntityFilter(e models.Entities) bool {
	return e.Customer != "" || e.Product != "" || e.StockGroup != "" || e.Region != ""
}

// updateContext implements replace-on-success: an answer that established
// a grouping dimension overwrites the slot; otherwise the old context is
// kept as-is (stale context inheritance is intentional).
func (s *QueryEngineService) updateContext(ctx models.ConversationContext, a models.QueryAnalysis) models.ConversationContext {
	if a.GroupBy == "" {
		return ctx
	}
	newCtx := models.ConversationContext{
		LastTopic:    topicFor(a.GroupBy),
		LastDataType: a.GroupBy,
		LastCount:    ctx.LastCount,
	}
	if a.Entities.Count > 0 {
		newCtx.LastCount = a.Entities.Count
	}
	return newCtx
}

func topicFor(groupBy string) string {
	switch groupBy {
	case GroupMonth, GroupCPDate:
		return "time"
	case GroupCustomer:
		return "customers"
	case GroupItem:
		return "products"
	case GroupCategory:
		return "categories"
	case GroupRegion:
		return "regions"
	}
	return "sales"
}

// handleCommands answers debug and help commands, stage (d) of the chain.
// They are checked up front only because they must work with no dataset.
func (s *QueryEngineService) handleCommands(query string, vocab models.Vocabulary, ctx models.ConversationContext) string {
	switch query {
	case "help", "?":
		return s.helpMessage()
	case "debug columns":
		return fmt.Sprintf("**Columns**\n- Customers: %d\n- Items: %d\n- Categories: %d\n- Regions: %d\n- Numeric: %s\n- Date: %s",
			len(vocab.Customers), len(vocab.Items), len(vocab.Categories), len(vocab.Regions),
			strings.Join(vocab.NumericColumns, ", "), strings.Join(vocab.DateColumns, ", "))
	case "debug context":
		if ctx.LastDataType == "" {
			return "**Context**: empty"
		}
		return fmt.Sprintf("**Context**\n- Topic: %s\n- Data type: %s\n- Count: %d",
			ctx.LastTopic, ctx.LastDataType, ctx.LastCount)
	}
	return ""
}

func (s *QueryEngineService) helpMessage() string {
	return strings.Join([]string{
		"I can answer questions about your sales data. Try:",
		"- \"total revenue\"",
		"- \"top 5 customers\"",
		"- \"month wise breakdown\"",
		"- \"april vs may\"",
		"- \"average order value\"",
		"- \"sales for <customer name>\"",
		"- \"summary\"",
	}, "\n")
}
