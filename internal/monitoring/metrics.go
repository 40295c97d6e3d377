package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type Metrics struct {
	mu             sync.RWMutex
	RequestCount   int64            `json:"request_count"`
	ActiveRequests int64            `json:"active_requests"`
	ErrorCount     int64            `json:"error_count"`
	StatusCodes    map[string]int64 `json:"status_codes"`
	Endpoints      map[string]int64 `json:"endpoint_calls"`
	StartTime      time.Time        `json:"start_time"`
	LastRequest    time.Time        `json:"last_request"`
	totalDuration  time.Duration
}

var globalMetrics = &Metrics{
	StatusCodes: make(map[string]int64),
	Endpoints:   make(map[string]int64),
	StartTime:   time.Now(),
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests++
		globalMetrics.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())

		globalMetrics.mu.Lock()
		globalMetrics.ActiveRequests--
		globalMetrics.RequestCount++
		globalMetrics.totalDuration += duration
		globalMetrics.StatusCodes[status]++
		globalMetrics.Endpoints[c.FullPath()]++
		globalMetrics.LastRequest = time.Now()
		if c.Writer.Status() >= 500 {
			globalMetrics.ErrorCount++
		}
		globalMetrics.mu.Unlock()
	}
}

func MetricsHandler(c *gin.Context) {
	globalMetrics.mu.RLock()
	defer globalMetrics.mu.RUnlock()

	avgMs := int64(0)
	if globalMetrics.RequestCount > 0 {
		avgMs = globalMetrics.totalDuration.Milliseconds() / globalMetrics.RequestCount
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"request_count":    globalMetrics.RequestCount,
		"active_requests":  globalMetrics.ActiveRequests,
		"error_count":      globalMetrics.ErrorCount,
		"avg_duration_ms":  avgMs,
		"status_codes":     globalMetrics.StatusCodes,
		"endpoint_calls":   globalMetrics.Endpoints,
		"uptime_seconds":   int64(time.Since(globalMetrics.StartTime).Seconds()),
		"goroutines":       runtime.NumGoroutine(),
		"heap_alloc_bytes": mem.HeapAlloc,
	})
}

// HealthHandler reports liveness plus backing-store reachability supplied by
// the caller at wiring time.
func HealthHandler(checks map[string]func() error) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		results := gin.H{}
		for name, check := range checks {
			if err := check(); err != nil {
				results[name] = err.Error()
				status = http.StatusServiceUnavailable
			} else {
				results[name] = "ok"
			}
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": results})
	}
}
