package store

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
}

// RedisConfig configures redis connectivity
// Prefix namespaces every key, channel, and queue this process touches
type RedisConfig struct {
	Enabled bool
	Addr    string
	DB      int
	Prefix  string
}
