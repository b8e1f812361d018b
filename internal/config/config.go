package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig        `mapstructure:"server"`
	Database DatabaseConfig      `mapstructure:"database"`
	S3       S3Config            `mapstructure:"s3"`
	JWT      JWTConfig           `mapstructure:"jwt"`
	SMTP     SMTPConfig          `mapstructure:"smtp"`
	Push     PushConfig          `mapstructure:"push"`
	Cron     CronConfig          `mapstructure:"cron"`
	PlanGen  PlanGeneratorConfig `mapstructure:"plangen"`
	Advice   AdviceConfig        `mapstructure:"advice"`
	Log      LogConfig           `mapstructure:"log"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config configures the weekly report archive bucket.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig holds the shared secret for validating tokens minted by the
// identity collaborator. This service never issues tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
}

// SMTPConfig configures the email delivery channel.
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
}

// PushConfig configures the web-push delivery channel (VAPID).
type PushConfig struct {
	VAPIDPublicKey  string `mapstructure:"vapid_public_key"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key"`
	Subject         string `mapstructure:"subject"`
	TTLSeconds      int    `mapstructure:"ttl_seconds"`
}

// CronConfig configures the scheduler and the internal HTTP entry points that
// mirror the scheduled jobs. The shared secret gates those endpoints; the
// regeneration flag can switch the weekly sweep off entirely.
type CronConfig struct {
	Secret              string `mapstructure:"secret"`
	RegenerationEnabled bool   `mapstructure:"regeneration_enabled"`
	EmailSpec           string `mapstructure:"email_spec"`
	PushSpec            string `mapstructure:"push_spec"`
	CandidatesSpec      string `mapstructure:"candidates_spec"`
	RegenerationSpec    string `mapstructure:"regeneration_spec"`
}

// PlanGeneratorConfig points at the plan-management collaborator endpoint the
// regeneration sweep calls for each claimed user-week.
type PlanGeneratorConfig struct {
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// AdviceConfig selects the advice provider. Anything other than "openai"
// resolves to the mock provider, which refuses to produce advice.
type AdviceConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"environment"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	viper.AutomaticEnv()
	// Use replacer for nested keys e.g., server.address -> SERVER_ADDRESS,
	// cron.secret -> CRON_SECRET
	viper.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("database.uri", "mongodb://localhost:27017")
	viper.SetDefault("database.name", "adherence_app_default")
	viper.SetDefault("s3.use_ssl", true)
	viper.SetDefault("smtp.port", 587)
	viper.SetDefault("push.ttl_seconds", 3600)
	viper.SetDefault("cron.regeneration_enabled", false)
	viper.SetDefault("cron.email_spec", "0 * * * *")        // hourly, on the hour
	viper.SetDefault("cron.push_spec", "*/15 * * * *")      // every 15 minutes
	viper.SetDefault("cron.candidates_spec", "30 6 * * *")  // daily, 06:30 UTC
	viper.SetDefault("cron.regeneration_spec", "0 4 * * 1") // Mondays, 04:00 UTC
	viper.SetDefault("advice.provider", "mock")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.environment", "development")

	// --- Read Config File ---
	err = viper.ReadInConfig()
	// If config file not found, continue (might rely solely on env vars).
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// --- Unmarshal Config ---
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
