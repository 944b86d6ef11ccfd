package config

import (
	"log"
	"os"
	"strconv"
)

type Config struct {
	Port string

	// Admission control
	PerMinuteCeiling int
	DailyCeiling     int
	EnforceIdentity  bool
	// AllowCeilingOverride lets tests lower the per-minute ceiling through
	// a request header. Never enable in production.
	AllowCeilingOverride bool

	// Shared state; empty values select the in-process backends.
	RedisURL string
	MySQLDSN string

	CacheTTLSeconds int

	// Upstream model
	AIProvider string
	GeminiKey  string
	Model      string

	ArchiveBase string
	JWTSecret   string

	MaxConcurrentVerify int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		if def == "" {
			log.Fatalf("missing env %s", key)
		}
		return def
	}
	return v
}

func getint(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("env %s: %v", key, err)
	}
	return n
}

func getbool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

func Load() Config {
	return Config{
		Port:                 getenv("PORT", "8080"),
		PerMinuteCeiling:     getint("RATE_LIMIT_PER_MINUTE", 5),
		DailyCeiling:         getint("DAILY_QUOTA", 200),
		EnforceIdentity:      getbool("ENFORCE_IDENTITY", false),
		AllowCeilingOverride: getbool("ALLOW_RATELIMIT_OVERRIDE", false),
		RedisURL:             os.Getenv("REDIS_URL"),
		MySQLDSN:             os.Getenv("MYSQL_DSN"),
		CacheTTLSeconds:      getint("CACHE_TTL_SECONDS", 3600),
		AIProvider:           getenv("AI_PROVIDER", "gemini"),
		GeminiKey:            getenv("GEMINI_API_KEY", ""),
		Model:                os.Getenv("AI_MODEL"),
		ArchiveBase:          getenv("ARCHIVE_BASE", "https://web.archive.org"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		MaxConcurrentVerify:  getint("MAX_CONCURRENT_VERIFY", 3),
	}
}
