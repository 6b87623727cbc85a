package module

import (
	"time"

	"critiq/internal/adapters/analyze"
	"critiq/internal/platform/config"
)

// Options controls the reviews pipeline
type Options struct {
	RatePerHour  int
	CacheTTL     time.Duration
	CacheScope   string
	Queue        string
	Concurrency  int
	DequeueWait  time.Duration
	PollInterval time.Duration
	TrustProxy   bool

	// Analyzer overrides the OpenAI-backed default, used by tests
	Analyzer analyze.Analyzer
}

// FromConfig reads with REVIEWS_ prefix; the trusted-proxy flag belongs to
// the API edge and lives under CORE_API_
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("REVIEWS_")
	return Options{
		RatePerHour:  c.MayInt("RATE_PER_HOUR", 60),
		CacheTTL:     c.MayDuration("CACHE_TTL", 24*time.Hour),
		CacheScope:   c.MayString("CACHE_SCOPE", "public"),
		Queue:        c.MayString("QUEUE", "process_review"),
		Concurrency:  c.MayInt("WORKER_CONCURRENCY", 4),
		DequeueWait:  c.MayDuration("DEQUEUE_WAIT", time.Second),
		PollInterval: c.MayDuration("POLL_INTERVAL", time.Second),
		TrustProxy:   cfg.Prefix("CORE_API_").MayBool("TRUSTED_PROXY", false),
	}
}

func analyzerFromConfig(cfg config.Conf) analyze.Analyzer {
	c := cfg.Prefix("ANALYZE_")
	return analyze.NewOpenAI(analyze.Options{
		APIKey:            c.MayString("OPENAI_API_KEY", ""),
		Model:             c.MayString("MODEL", ""),
		Timeout:           c.MayDuration("TIMEOUT", 0),
		RequestsPerMinute: c.MayInt("RPM", 0),
	})
}
