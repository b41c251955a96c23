package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	access "aegis/internal/access/config"
)

// Server captures process level configuration.
type Server struct {
	Addr            string
	Environment     string
	LogLevel        string
	ShutdownTimeout time.Duration

	// AdminToken guards the dashboard routes. Empty disables the dashboard.
	AdminToken string

	// TrustedProxies lists the CIDRs whose X-Forwarded-For entries are believed
	TrustedProxies []string

	// LocalKeyLock serializes window updates per key inside this process.
	// It does not coordinate across replicas.
	LocalKeyLock bool

	SessionCleanupInterval time.Duration

	Redis  RedisConfig
	Notify NotifyConfig
	Access *access.Config
}

// NotifyConfig sizes the asynchronous notification dispatcher.
type NotifyConfig struct {
	BufferSize       int
	SendTimeout      time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// RedisConfig configures the shared store connection.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	cfg := access.DefaultConfig()
	cfg.IPLimit.MaxEvents = getEnvAsInt("AEGIS_IP_MAX_ATTEMPTS", cfg.IPLimit.MaxEvents)
	cfg.IPLimit.Window = getEnvAsDuration("AEGIS_IP_WINDOW", cfg.IPLimit.Window)
	cfg.UsernameLimit.MaxEvents = getEnvAsInt("AEGIS_USERNAME_MAX_ATTEMPTS", cfg.UsernameLimit.MaxEvents)
	cfg.UsernameLimit.Window = getEnvAsDuration("AEGIS_USERNAME_WINDOW", cfg.UsernameLimit.Window)
	cfg.Devices.MaxTrustedDevices = getEnvAsInt("AEGIS_MAX_TRUSTED_DEVICES", cfg.Devices.MaxTrustedDevices)
	cfg.Devices.TrustedDeviceExpiry = getEnvAsDuration("AEGIS_TRUSTED_DEVICE_EXPIRY", cfg.Devices.TrustedDeviceExpiry)
	cfg.Sessions.MaxConcurrentSessions = getEnvAsInt("AEGIS_MAX_CONCURRENT_SESSIONS", cfg.Sessions.MaxConcurrentSessions)
	cfg.Sessions.IdleTimeout = getEnvAsDuration("AEGIS_SESSION_IDLE_TIMEOUT", cfg.Sessions.IdleTimeout)
	cfg.Failures.MaxAttempts = getEnvAsInt("AEGIS_MAX_FAILED_ATTEMPTS", cfg.Failures.MaxAttempts)
	cfg.Failures.Window = getEnvAsDuration("AEGIS_FAILED_ATTEMPT_WINDOW", cfg.Failures.Window)
	cfg.StoreTimeout = getEnvAsDuration("AEGIS_STORE_TIMEOUT", cfg.StoreTimeout)
	if tz := os.Getenv("AEGIS_RISK_TIMEZONE"); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			cfg.Risk.Location = loc
		}
	}

	return Server{
		Addr:                   getEnv("AEGIS_ADDR", ":8080"),
		Environment:            getEnv("AEGIS_ENV", "local"),
		LogLevel:               getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout:        getEnvAsDuration("AEGIS_SHUTDOWN_TIMEOUT", 10*time.Second),
		AdminToken:             os.Getenv("AEGIS_ADMIN_TOKEN"),
		TrustedProxies:         getEnvAsList("AEGIS_TRUSTED_PROXIES"),
		LocalKeyLock:           getEnvAsBool("AEGIS_LOCAL_KEYLOCK", false),
		SessionCleanupInterval: getEnvAsDuration("AEGIS_SESSION_CLEANUP_INTERVAL", 5*time.Minute),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvAsInt("REDIS_POOL_SIZE", 20),
			MinIdleConns: getEnvAsInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvAsDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getEnvAsDuration("REDIS_READ_TIMEOUT", 200*time.Millisecond),
			WriteTimeout: getEnvAsDuration("REDIS_WRITE_TIMEOUT", 200*time.Millisecond),
		},
		Notify: NotifyConfig{
			BufferSize:       getEnvAsInt("AEGIS_NOTIFY_BUFFER_SIZE", 256),
			SendTimeout:      getEnvAsDuration("AEGIS_NOTIFY_SEND_TIMEOUT", 2*time.Second),
			BreakerThreshold: getEnvAsInt("AEGIS_NOTIFY_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  getEnvAsDuration("AEGIS_NOTIFY_BREAKER_COOLDOWN", time.Minute),
		},
		Access: cfg,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func getEnvAsBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// getEnvAsList splits a comma separated value, dropping blank entries.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
