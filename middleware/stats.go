package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rankforge/backend/logging"
)

// saveEvery persists the request statistics once per this many requests.
const saveEvery = 100

// RequestStats tracks visitors and analysis request latency.
func RequestStats(stats *logging.Statistics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		stats.TrackVisitor(c.ClientIP())

		c.Next()

		if c.Request.URL.Path == "/api/analyze" && c.Request.Method == "POST" {
			loadTime := float64(time.Since(start).Milliseconds())
			pageURL, _ := c.Get("analyzedUrl")
			keyword, _ := c.Get("analyzedKeyword")
			urlStr, _ := pageURL.(string)
			kwStr, _ := keyword.(string)
			stats.TrackAnalysis(urlStr, kwStr, loadTime, c.Writer.Status() >= 400)
		}

		if stats.RequestTotal()%saveEvery == 0 {
			go stats.Save()
		}
	}
}
