package api

import (
	"crypto/ed25519"
	"time"
)

type ServerConfig struct {
	ID string

	Auth      AuthConfig
	DB        DBConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
	Engine    EngineConfig
}

type AuthConfig struct {
	// 驗證存取權杖簽章的 Ed25519 公鑰，權杖由外部的登入服務簽發
	PublicKey ed25519.PublicKey
	Issuer    string
	Audience  string
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string

	StreamKeys RedisStreamKeys
}

type RedisStreamKeys struct {
	AuctionEvents string
}

type SchedulerConfig struct {
	Interval  time.Duration
	BatchSize int
	// 多副本部署時是否以分散式租約選出唯一的掃描者
	LeaderLock bool
}

type EngineConfig struct {
	RetryAttempts int
	RetryDelay    time.Duration
	LedgerTTL     time.Duration
}
