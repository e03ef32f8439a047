package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	DBHost     string `envconfig:"DB_HOST" required:"true"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" required:"true"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" required:"true"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// Redis is optional; leave the address empty to run without the
	// popularity leaderboard cache.
	RedisAddr string `envconfig:"REDIS_ADDR"`

	// Pub/Sub settings. An empty project ID disables publishing.
	GCPProjectID            string `envconfig:"GCP_PROJECT_ID"`
	NotificationTopic       string `envconfig:"PUBSUB_NOTIFICATION_TOPIC" default:"notifications"`
	PushAudience            string `envconfig:"PUBSUB_PUSH_AUDIENCE"`
	PushServiceAccountEmail string `envconfig:"PUBSUB_PUSH_SERVICE_ACCOUNT"`

	// Admin endpoints (manual job triggers) are protected with this secret.
	JWTSecret string `envconfig:"ADMIN_JWT_SECRET" required:"true"`

	// Verification email settings. When both the API key and the secret
	// name are empty, verification links are only logged.
	VerificationBaseURL      string `envconfig:"VERIFICATION_BASE_URL" default:"http://localhost:8080"`
	SendGridAPIKey           string `envconfig:"SENDGRID_API_KEY"`
	SendGridAPIKeySecretName string `envconfig:"SENDGRID_API_KEY_SECRET_NAME"`
	EmailFrom                string `envconfig:"EMAIL_FROM" default:"noreply@everycourse.app"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DatabaseURL builds the pgx connection string from the DB settings.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
