package app

type Cfg struct {
	Name      string    `yaml:"name" mapstructure:"name"`
	Addr      string    `yaml:"addr" mapstructure:"addr"`
	LogLevel  string    `yaml:"log_level" mapstructure:"log_level"`
	Db        DBConfig  `yaml:"db" mapstructure:"db"`
	Redis     Redis     `yaml:"redis" mapstructure:"redis"`
	Nats      Nats      `yaml:"nats" mapstructure:"nats"`
	OTel      OTel      `yaml:"otel" mapstructure:"otel"`
	Policy    Policy    `yaml:"policy" mapstructure:"policy"`
	RateLimit RateLimit `yaml:"rate_limit" mapstructure:"rate_limit"`
}

type DBConfig struct {
	Type                   string `yaml:"type" mapstructure:"type"` // mysql | postgres
	SourceName             string `yaml:"source_name" mapstructure:"source_name"`
	MaxOpenConns           int    `yaml:"max_open_conns" mapstructure:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns" mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" mapstructure:"conn_max_lifetime_minutes"`
	AutoMigrate            bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

type Redis struct {
	Enabled  bool   `yaml:"enabled" mapstructure:"enabled"`
	Addr     string `yaml:"addr" mapstructure:"addr"`
	Database int    `yaml:"db" mapstructure:"db"`
	Auth     string `yaml:"auth" mapstructure:"auth"`
}

type Nats struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	URL     string `yaml:"url" mapstructure:"url"`
}

type OTel struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	Addr        string  `yaml:"addr" mapstructure:"addr"`
	SampleRatio float64 `yaml:"sample_ratio" mapstructure:"sample_ratio"`
}

type Policy struct {
	Source                string `yaml:"source" mapstructure:"source"` // config | db
	ReloadIntervalSeconds int    `yaml:"reload_interval_seconds" mapstructure:"reload_interval_seconds"`
}

// RateLimit is per user and route. PerSecond <= 0 disables it.
type RateLimit struct {
	PerSecond float64 `yaml:"per_second" mapstructure:"per_second"`
	Burst     int     `yaml:"burst" mapstructure:"burst"`
}

const (
	PolicySourceConfig = "config"
	PolicySourceDB     = "db"

	// policyValuesKey is the viper section read by the config policy source.
	policyValuesKey = "policy.values"
)
