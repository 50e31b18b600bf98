package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Planner  PlannerConfig  `mapstructure:"planner"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	// Enabled gates export archiving; the rest of the service runs fine
	// without object storage.
	Enabled bool `mapstructure:"enabled"`
}

// JWTConfig defines JWT specific configuration.
// Expiration must be a duration string ("60m", "1h") so Viper can unmarshal
// it straight into time.Duration.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// AuthConfig holds the single operator account allowed to use the API.
type AuthConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"` // bcrypt hash
}

// PlannerConfig holds scheduling defaults applied when a request leaves
// them unset.
type PlannerConfig struct {
	// WorkoutDays are preferred weekday names ("monday", ...) in priority order.
	WorkoutDays []string `mapstructure:"workout_days"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Environment variables: server.address -> SERVER_ADDRESS etc.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "plan_compiler")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("s3.enabled", false)
	viper.SetDefault("jwt.expiration", "1h")
	viper.SetDefault("planner.workout_days", []string{"tuesday", "thursday", "saturday"})

	err = viper.ReadInConfig()
	// A missing config file is fine; env vars and defaults still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}

// Weekdays converts the configured workout day names into time.Weekday
// values, preserving order and skipping names it cannot parse.
func (p PlannerConfig) Weekdays() []time.Weekday {
	names := map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}
	var days []time.Weekday
	for _, name := range p.WorkoutDays {
		if d, ok := names[strings.ToLower(strings.TrimSpace(name))]; ok {
			days = append(days, d)
		}
	}
	return days
}
