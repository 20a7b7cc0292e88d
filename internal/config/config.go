package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Database DatabaseConfig
	Matching MatchingConfig
	Caches   CacheConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr    string
	Enabled bool
}

type KafkaConfig struct {
	Brokers  []string
	GroupID  string
	Topics   TopicConfig
	Enabled  bool
	MockMode bool
}

type TopicConfig struct {
	AttendanceUpdated string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

// MatchingConfig holds the fuzzy-matching policy. The thresholds are the
// acceptance floor per field type: identifiers near-exact, names tolerant of
// small typos, divisions tolerant of phrasing variance.
type MatchingConfig struct {
	NIMThreshold      float64
	NameThreshold     float64
	DivisionThreshold float64
	MaxEditDistance   int
}

// CacheConfig bounds the in-memory caches that absorb scan bursts. None of
// them are required for correctness, only for latency.
type CacheConfig struct {
	NormalizationCapacity int
	MemberCapacity        int
	KegiatanCapacity      int
	DivisionListCapacity  int
	PayloadCapacity       int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr:    getEnv("REDIS_ADDR", "localhost:6379"),
			Enabled: getEnvBool("REDIS_ENABLED", true),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			Username:     getEnv("DB_USERNAME", "presensi_user"),
			Password:     getEnv("DB_PASSWORD", "presensi_pass"),
			Database:     getEnv("DB_NAME", "presensi_panel"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
		},
		Kafka: KafkaConfig{
			Brokers:  []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			GroupID:  getEnv("KAFKA_GROUP_ID", "attendance-panel-group"),
			Enabled:  getEnvBool("KAFKA_ENABLED", true),
			MockMode: getEnvBool("KAFKA_MOCK_MODE", false),
			Topics: TopicConfig{
				AttendanceUpdated: getEnv("KAFKA_TOPIC_ATTENDANCE", "presensi.attendance.updated"),
			},
		},
		Matching: MatchingConfig{
			NIMThreshold:      getEnvFloat("MATCH_NIM_THRESHOLD", 0.95),
			NameThreshold:     getEnvFloat("MATCH_NAME_THRESHOLD", 0.90),
			DivisionThreshold: getEnvFloat("MATCH_DIVISION_THRESHOLD", 0.80),
			MaxEditDistance:   getEnvInt("MATCH_MAX_EDIT_DISTANCE", 8),
		},
		Caches: CacheConfig{
			NormalizationCapacity: getEnvInt("CACHE_NORMALIZATION_CAPACITY", 256),
			MemberCapacity:        getEnvInt("CACHE_MEMBER_CAPACITY", 500),
			KegiatanCapacity:      getEnvInt("CACHE_KEGIATAN_CAPACITY", 100),
			DivisionListCapacity:  getEnvInt("CACHE_DIVISION_LIST_CAPACITY", 200),
			PayloadCapacity:       getEnvInt("CACHE_PAYLOAD_CAPACITY", 128),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}
