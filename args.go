package main

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gavel/api"
)

func ParseArgs() Args {
	// server config
	pflag.String("server-url", "0.0.0.0:8080", "")
	pflag.String("instance-id", uuid.NewString(), "")

	// auth config
	pflag.String("auth-public-key", "", "base64-encoded Ed25519 public key")
	pflag.String("auth-issuer", "", "")
	pflag.String("auth-audience", "", "")

	// db config
	pflag.String("db-user", "", "")
	pflag.String("db-password", "", "")
	pflag.String("db-host", "", "")
	pflag.Int("db-port", 5432, "")
	pflag.String("db-database", "", "")
	pflag.String("db-schema", "", "")

	// redis config
	pflag.String("redis-addr", "", "")
	pflag.String("redis-password", "", "")
	pflag.Int("redis-db", 15, "")
	pflag.String("redis-key-prefix", "gavel:", "")

	// redis stream keys
	pflag.String("redis-stream-key-for-auction-events", "gavel-auction-events", "")

	// scheduler config
	pflag.Duration("scheduler-interval", time.Second, "")
	pflag.Int("scheduler-batch-size", 256, "")
	pflag.Bool("scheduler-leader-lock", false, "")

	// engine config
	pflag.Int("engine-retry-attempts", 5, "")
	pflag.Duration("engine-retry-delay", 20*time.Millisecond, "")
	pflag.Duration("engine-ledger-ttl", 30*time.Minute, "")

	// bind pflag to viper
	pflag.Parse()
	viper.BindPFlags(pflag.CommandLine)
	viper.AutomaticEnv()
	viper.SetEnvPrefix("GAVEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	// initial arguments
	var publicKey ed25519.PublicKey
	if raw, err := base64.StdEncoding.DecodeString(viper.GetString("auth-public-key")); err == nil && len(raw) == ed25519.PublicKeySize {
		publicKey = ed25519.PublicKey(raw)
	}
	return Args{
		ServerURL: viper.GetString("server-url"),
		ServerConfig: api.ServerConfig{
			ID: viper.GetString("instance-id"),
			Auth: api.AuthConfig{
				PublicKey: publicKey,
				Issuer:    viper.GetString("auth-issuer"),
				Audience:  viper.GetString("auth-audience"),
			},
			DB: api.DBConfig{
				User:     viper.GetString("db-user"),
				Password: viper.GetString("db-password"),
				Host:     viper.GetString("db-host"),
				Port:     viper.GetInt("db-port"),
				Database: viper.GetString("db-database"),
				Schema:   viper.GetString("db-schema"),
			},
			Redis: api.RedisConfig{
				Addr:      viper.GetString("redis-addr"),
				Password:  viper.GetString("redis-password"),
				DB:        viper.GetInt("redis-db"),
				KeyPrefix: viper.GetString("redis-key-prefix"),
				StreamKeys: api.RedisStreamKeys{
					AuctionEvents: viper.GetString("redis-stream-key-for-auction-events"),
				},
			},
			Scheduler: api.SchedulerConfig{
				Interval:   viper.GetDuration("scheduler-interval"),
				BatchSize:  viper.GetInt("scheduler-batch-size"),
				LeaderLock: viper.GetBool("scheduler-leader-lock"),
			},
			Engine: api.EngineConfig{
				RetryAttempts: viper.GetInt("engine-retry-attempts"),
				RetryDelay:    viper.GetDuration("engine-retry-delay"),
				LedgerTTL:     viper.GetDuration("engine-ledger-ttl"),
			},
		},
	}
}

type Args struct {
	ServerURL    string
	ServerConfig api.ServerConfig
}

func (args Args) Validate() bool {
	return args.ServerURL != "" &&
		args.ServerConfig.Auth.PublicKey != nil &&
		args.ServerConfig.DB.Host != "" &&
		args.ServerConfig.Redis.Addr != ""
}
