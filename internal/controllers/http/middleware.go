package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"checkout-service/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const correlationHeader = "X-Correlation-Id"

// CorrelationID tags every request with an id, reusing the caller's when sent.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		cid := c.GetHeader(correlationHeader)
		if cid == "" {
			cid = uuid.NewString()
		}
		c.Set("correlationId", cid)
		c.Header(correlationHeader, cid)
		c.Next()
	}
}

// ErrorLogger logs whatever the handlers attached with c.Error.
func ErrorLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			logger.WithFields(logrus.Fields{
				"method":        c.Request.Method,
				"path":          c.FullPath(),
				"status":        c.Writer.Status(),
				"correlationId": c.GetString("correlationId"),
			}).Error(c.Errors.String())
		}
	}
}

// CORS allows every origin outside production. In production only the
// configured origins are allowed, and none when the list is empty.
func CORS(cfg *config.Config) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if cfg.Production() {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
		if len(corsConfig.AllowOrigins) == 0 {
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods(http.MethodPatch)
	corsConfig.AddAllowHeaders("Authorization", correlationHeader)
	corsConfig.AddExposeHeaders("Content-Length", correlationHeader)
	return cors.New(corsConfig)
}

type RateLimiter struct {
	client goredis.UniversalClient
	limit  int64
	window time.Duration
}

func NewRateLimiter(client goredis.UniversalClient, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// Middleware counts requests per client IP in a fixed window. The counter
// and its expiry are written in one MULTI, and NX keeps later hits from
// stretching the window. Redis failures let the request through.
func (rl *RateLimiter) Middleware(c *gin.Context) {
	key := "ratelimit:" + c.ClientIP()
	ctx := c.Request.Context()

	var incr *goredis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, rl.window)
		return nil
	})
	if err != nil {
		config.GetLogger().WithField("key", key).Warnf("rate limiter unavailable: %v", err)
		c.Next()
		return
	}
	count := incr.Val()

	if count > rl.limit {
		seconds := int(rl.window.Seconds())
		c.Header("Retry-After", strconv.Itoa(seconds))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"message": fmt.Sprintf("Rate limit exceeded. Try again in %d seconds", seconds),
		})
		return
	}

	c.Next()
}

func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"message": "route not found"})
}
