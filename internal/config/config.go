package config

import (
	"flag"
	"time"
)

// Config is assembled from flags with environment fallbacks. An empty
// PostgresAddr selects the in-memory ledger; an empty RedisAddr disables
// event publishing.
type Config struct {
	LogLevel   string
	ListenAddr string

	PostgresAddr     string // Postgres address in host[:port] format
	PostgresDB       string
	PostgresUser     string
	PostgresPassword string

	RedisAddr     string // Redis address in host[:port] format
	RedisUser     string
	RedisPassword string

	MinIncrement string        // minimum bid increment in currency units
	LockWait     time.Duration // bounded wait for the per-item lock
	AutoClose    bool          // settle auctions automatically at end time
}

func New() *Config {
	c := &Config{}

	flag.StringVar(&c.LogLevel, "logLevel", LookupEnvString("LOG_LEVEL", "info"), "Set log level: debug, info, warning, error.")
	flag.StringVar(&c.ListenAddr, "listenAddr", LookupEnvString("LISTEN_ADDR", ":8080"), `Address in form of "[host]:port" that HTTP server should be listening on.`)

	flag.StringVar(&c.PostgresAddr, "postgresAddr", LookupEnvString("POSTGRES_ADDR", ""), "Set PostgreSQL address as host:port. Empty uses the in-memory ledger.")
	flag.StringVar(&c.PostgresDB, "postgresDB", LookupEnvString("POSTGRES_DB", "auctionledger"), "Set PostgreSQL DB.")
	flag.StringVar(&c.PostgresUser, "postgresUser", LookupEnvString("POSTGRES_USER", "develop"), "Set PostgreSQL user.")
	flag.StringVar(&c.PostgresPassword, "postgresPassword", LookupEnvString("POSTGRES_PASSWORD", "develop"), "Set PostgreSQL password.")

	flag.StringVar(&c.RedisAddr, "redisAddr", LookupEnvString("REDIS_ADDR", ""), "Redis address in host[:port] format. Empty disables event publishing.")
	flag.StringVar(&c.RedisUser, "redisUser", LookupEnvString("REDIS_USER", ""), "Redis user.")
	flag.StringVar(&c.RedisPassword, "redisPassword", LookupEnvString("REDIS_PASSWORD", ""), "Redis password.")

	flag.StringVar(&c.MinIncrement, "minIncrement", LookupEnvString("MIN_INCREMENT", "10"), "Minimum amount a new bid must exceed the current price by.")
	flag.DurationVar(&c.LockWait, "lockWait", LookupEnvDuration("LOCK_WAIT", 2*time.Second), "How long a bid submission waits for the per-item lock before failing busy.")
	flag.BoolVar(&c.AutoClose, "autoClose", LookupEnvBool("AUTO_CLOSE", true), "Settle auctions automatically when their end timestamp passes.")

	flag.Parse()

	return c
}
