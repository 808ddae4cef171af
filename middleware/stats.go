package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/seo-optimizer/dashboard/logging"
)

const reportKey = "report_submission"

// saveEvery is how many report submissions pass between statistics saves.
const saveEvery = 100

type reportSubmission struct {
	domain string
	failed bool
}

// MarkReport tells Stats that this request submitted a report for domain.
func MarkReport(c *gin.Context, domain string, failed bool) {
	c.Set(reportKey, reportSubmission{domain: domain, failed: failed})
}

// Stats tracks visitors and report submissions.
func Stats(stats *logging.Statistics, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		stats.TrackVisitor(c.ClientIP())

		c.Next()

		v, ok := c.Get(reportKey)
		if !ok {
			return
		}
		sub := v.(reportSubmission)
		total := stats.TrackReport(sub.domain, time.Since(start), sub.failed)

		if total%saveEvery == 0 {
			go func() {
				if err := stats.Save(); err != nil {
					log.Error("Failed to save statistics", zap.Error(err))
				}
			}()
		}
	}
}
