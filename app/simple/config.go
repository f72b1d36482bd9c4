package simple

import (
	"github.com/dmitrymomot/waypoint/core/logger"
	"github.com/dmitrymomot/waypoint/core/server"
	"github.com/dmitrymomot/waypoint/integration/database/redis"
	"github.com/dmitrymomot/waypoint/pkg/ratelimiter"
)

// Config aggregates every setting the application reads from the environment.
type Config struct {
	AppName string `env:"APP_NAME" envDefault:"waypoint"`
	Env     string `env:"APP_ENV" envDefault:"development"`

	Server    server.Config
	Log       logger.Config
	Redis     redis.Config
	RateLimit ratelimiter.Config

	// RedisEnabled switches the rate limiter from the in-process store to
	// Redis and adds a Redis readiness check.
	RedisEnabled     bool `env:"REDIS_ENABLED" envDefault:"false"`
	RateLimitEnabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	MetricsEnabled   bool `env:"METRICS_ENABLED" envDefault:"true"`
}
