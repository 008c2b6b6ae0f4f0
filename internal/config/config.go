package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Postgres DBConfig
	Redis    RedisConfig
	S3       S3Config
	Worker   WorkerConfig
	Upload   UploadConfig
	Monitor  MonitorConfig
	Logger   Logger
}

type ServerConfig struct {
	AppVersion   string
	Port         string
	Mode         string
	JwtSecretKey string
	PublicURL    string
}

// WorkerConfig points at the external processing worker and carries the
// shared secret used to authenticate its webhook callbacks.
type WorkerConfig struct {
	ClipEndpoint    string
	TrailerEndpoint string
	CallbackSecret  string
	DispatchTimeout time.Duration
	LockTTL         time.Duration
}

type UploadConfig struct {
	PartSize       int64
	PresignExpiry  time.Duration
	MaxUploadBytes int64
}

// MonitorConfig tunes the client-facing staleness detectors. Neither timer
// mutates server state.
type MonitorConfig struct {
	StaleThreshold time.Duration
	MaxDuration    time.Duration
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	PgDriver string
}

type RedisConfig struct {
	RedisAddr     string
	RedisPassword string
	DB            int
	MinIdleConns  int
	PoolSize      int
	PoolTimeout   int
}

type S3Config struct {
	Endpoint     string
	Region       string
	AccessKey    string
	SecretKey    string
	UploadBucket string
	OutputBucket string
}

type Logger struct {
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Encoding          string
	Level             string
}

func LoadConfig(filename string) (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigFile(filename)
	v.AddConfigPath(".")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFound) {
			return nil, errors.New("config file not found")
		}
		return nil, err
	}
	return v, nil
}

func ParseConfig(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if c.Worker.LockTTL == 0 {
		c.Worker.LockTTL = 15 * time.Minute
	}
	if c.Worker.DispatchTimeout == 0 {
		c.Worker.DispatchTimeout = 30 * time.Second
	}
	if c.Upload.PartSize == 0 {
		c.Upload.PartSize = 16 << 20
	}
	if c.Upload.PresignExpiry == 0 {
		c.Upload.PresignExpiry = 60 * time.Minute
	}
	if c.Monitor.StaleThreshold == 0 {
		c.Monitor.StaleThreshold = 5 * time.Minute
	}
	if c.Monitor.MaxDuration == 0 {
		c.Monitor.MaxDuration = 60 * time.Minute
	}
	return &c, nil
}
