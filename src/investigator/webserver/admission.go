package webserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/signalworks/claimcheck/src/quota"
	"github.com/signalworks/claimcheck/src/ratelimit"
)

const quotaRemainingContext = "quotaRemaining"

// AdmissionMiddleware runs the rate limiter and the quota tracker, in that
// order, before any upstream cost is incurred. The X-RateLimit-Ceiling
// header lowers the per-minute ceiling for one request, but only when the
// non-production override toggle is on.
func AdmissionMiddleware(limiter *ratelimit.Limiter, tracker *quota.Tracker, allowOverride bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(sessionKeyContext)

		var decision ratelimit.Decision
		if override := overrideCeiling(c, allowOverride); override > 0 {
			decision = limiter.AdmitWithCeiling(c.Request.Context(), key, override)
		} else {
			decision = limiter.Admit(c.Request.Context(), key)
		}
		if !decision.Allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"err":         "rate_limited",
				"retry_after": decision.RetryAfterSeconds(),
			})
			c.Abort()
			return
		}

		remaining, allowed := tracker.Consume(c.Request.Context(), key)
		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{"err": "quota_exceeded"})
			c.Abort()
			return
		}

		c.Set(quotaRemainingContext, remaining)
		c.Next()
	}
}

func overrideCeiling(c *gin.Context, allowOverride bool) int {
	if !allowOverride {
		return 0
	}
	n, err := strconv.Atoi(c.GetHeader("X-RateLimit-Ceiling"))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}
