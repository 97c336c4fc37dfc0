package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// VariantSpec names a non-original variant and its target longest side.
type VariantSpec struct {
	Tag         string
	LongestSide int
}

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPass     string
	DBName     string
	DBNameTest string

	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	RabbitMQURL      string
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPass     string
	RabbitMQVhost    string
	RabbitMQPrefetch int

	// BlobRoot is blob.root: the filesystem root of the Store.
	BlobRoot string

	// JobTries is job.tries: max processing-job attempts.
	JobTries int
	// JobTimeout is job.timeout_s: per-attempt timeout.
	JobTimeout time.Duration

	// Variants is the ordered list of non-original variants to produce.
	Variants []VariantSpec

	// AttachReadyWait is attach.ready_wait_s.
	AttachReadyWait time.Duration

	// JPEGQuality is image.jpeg_quality.
	JPEGQuality int

	WorkerConcurrency int
	WorkerRate        float64
	WorkerBurst       int
	RetryDelays       []time.Duration
}

var AppConfig Config

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvDurationList(key string, defaultValue []time.Duration) []time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue
	}
	parts := strings.Split(raw, ",")
	out := make([]time.Duration, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		parsed, err := time.ParseDuration(part)
		if err != nil {
			return defaultValue
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

func defaultVariants() []VariantSpec {
	return []VariantSpec{
		{Tag: "256", LongestSide: 256},
		{Tag: "512", LongestSide: 512},
		{Tag: "1024", LongestSide: 1024},
	}
}

// InitConfig loads configuration from the environment with typed
// defaults, mirroring the teacher's config.InitConfig shape.
func InitConfig() {
	rabbitHost := getEnv("RABBITMQ_HOST", "localhost")
	rabbitPort := getEnv("RABBITMQ_PORT", "5672")
	rabbitUser := getEnv("RABBITMQ_USER", "guest")
	rabbitPass := getEnv("RABBITMQ_PASSWORD", "guest")
	rabbitVhost := getEnv("RABBITMQ_VHOST", "/")
	rabbitURL := getEnv("RABBITMQ_URL", "")
	if rabbitURL == "" {
		rabbitURL = fmt.Sprintf(
			"amqp://%s:%s@%s:%s/%s",
			url.PathEscape(rabbitUser),
			url.PathEscape(rabbitPass),
			rabbitHost,
			rabbitPort,
			url.PathEscape(rabbitVhost),
		)
	}

	AppConfig = Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "root"),
		DBPass:     getEnv("DB_PASS", "root"),
		DBName:     getEnv("DB_NAME", "imagevault"),
		DBNameTest: getEnv("DB_NAME_TEST", "imagevault_test"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       0,

		RabbitMQURL:      rabbitURL,
		RabbitMQHost:     rabbitHost,
		RabbitMQPort:     rabbitPort,
		RabbitMQUser:     rabbitUser,
		RabbitMQPass:     rabbitPass,
		RabbitMQVhost:    rabbitVhost,
		RabbitMQPrefetch: getEnvInt("RABBITMQ_PREFETCH", 8),

		BlobRoot:        getEnv("BLOB_ROOT", "./data/blobs"),
		JobTries:        getEnvInt("JOB_TRIES", 3),
		JobTimeout:      getEnvDuration("JOB_TIMEOUT", 300*time.Second),
		Variants:        defaultVariants(),
		AttachReadyWait: getEnvDuration("ATTACH_READY_WAIT", 30*time.Second),
		JPEGQuality:     getEnvInt("IMAGE_JPEG_QUALITY", 90),

		WorkerConcurrency: getEnvInt("WORKER_CONCURRENCY", 4),
		WorkerRate:        getEnvFloat("WORKER_RATE", 2),
		WorkerBurst:       getEnvInt("WORKER_BURST", 4),
		RetryDelays: getEnvDurationList(
			"JOB_RETRY_DELAYS",
			[]time.Duration{10 * time.Second, 30 * time.Second, 2 * time.Minute},
		),
	}
}
