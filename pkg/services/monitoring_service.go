package services

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// LogEntry records a single handled request.
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"status_code"`
	ResponseTime time.Duration `json:"response_time"`
}

// MonitoringService keeps an in-memory request log for the dashboard.
type MonitoringService struct {
	logs []LogEntry
	mu   sync.RWMutex
}

// NewMonitoringService creates a new monitoring service
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{logs: make([]LogEntry, 0)}
}

// LogRequest appends one request record.
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
}

// LoggingMiddleware records request latency and status for every route
// except the monitoring and admin groups themselves.
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}
		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: time.Since(start),
		})
	}
}

// DashboardData is the aggregated view served to the dashboard.
type DashboardData struct {
	RequestsOverTime []HourBucket       `json:"requestsOverTime"`
	Endpoints        map[string]int     `json:"endpoints"`
	StatusCodes      map[string]int     `json:"statusCodes"`
	AvgResponseMS    map[string]int64   `json:"avgResponseMs"`
	ChatLatency      *ChatLatencyStats  `json:"chatLatency,omitempty"`
	RecentErrors     []LogEntry         `json:"recentErrors"`
}

// HourBucket is one hour of request volume.
type HourBucket struct {
	Time     string `json:"time"`
	Requests int    `json:"requests"`
}

// ChatLatencyStats summarizes chat endpoint response times, the service's
// one latency-sensitive path (it may wait on the external assistant).
type ChatLatencyStats struct {
	Count int   `json:"count"`
	AvgMS int64 `json:"avgMs"`
	MaxMS int64 `json:"maxMs"`
}

// GetDashboardData aggregates the last periodHours of request logs.
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now().UTC()
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	var filtered []LogEntry
	for _, entry := range s.logs {
		if entry.Timestamp.After(since) {
			filtered = append(filtered, entry)
		}
	}

	buckets := make([]HourBucket, periodHours)
	counts := make(map[string]int)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		buckets[i] = HourBucket{Time: t.Format("15:00")}
		counts[t.Format(time.RFC3339)] = 0
	}
	for _, entry := range filtered {
		key := entry.Timestamp.UTC().Truncate(time.Hour).Format(time.RFC3339)
		if _, ok := counts[key]; ok {
			counts[key]++
		}
	}
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		buckets[i].Requests = counts[t.Format(time.RFC3339)]
	}

	endpoints := make(map[string]int)
	statusCodes := map[string]int{"2xx": 0, "4xx": 0, "5xx": 0}
	latencySum := make(map[string]time.Duration)
	latencyN := make(map[string]int)
	var chat ChatLatencyStats
	for _, entry := range filtered {
		endpoints[entry.Path]++
		switch {
		case entry.StatusCode >= 200 && entry.StatusCode < 300:
			statusCodes["2xx"]++
		case entry.StatusCode >= 400 && entry.StatusCode < 500:
			statusCodes["4xx"]++
		case entry.StatusCode >= 500:
			statusCodes["5xx"]++
		}
		latencySum[entry.Path] += entry.ResponseTime
		latencyN[entry.Path]++
		if strings.HasSuffix(entry.Path, "/chat") {
			chat.Count++
			ms := entry.ResponseTime.Milliseconds()
			chat.AvgMS += ms
			if ms > chat.MaxMS {
				chat.MaxMS = ms
			}
		}
	}
	avg := make(map[string]int64)
	for path, total := range latencySum {
		avg[path] = total.Milliseconds() / int64(latencyN[path])
	}

	var recentErrors []LogEntry
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < 10; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	data := DashboardData{
		RequestsOverTime: buckets,
		Endpoints:        endpoints,
		StatusCodes:      statusCodes,
		AvgResponseMS:    avg,
		RecentErrors:     recentErrors,
	}
	if chat.Count > 0 {
		chat.AvgMS /= int64(chat.Count)
		data.ChatLatency = &chat
	}
	return data
}
