package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	synnexTestOrderEndpoint = "https://testec.ca.tdsynnex.com/SynnexXML/PO"
	synnexProdOrderEndpoint = "https://ec.ca.tdsynnex.com/SynnexXML/PO"
	synnexTestPriceEndpoint = "https://testec.ca.tdsynnex.com/SynnexXML/PriceAvailability"
	synnexProdPriceEndpoint = "https://ec.ca.tdsynnex.com/SynnexXML/PriceAvailability"
)

type Config struct {
	HTTPPort string `env:"HTTP_PORT"`

	DBConfig struct {
		DBHost     string `env:"BRIDGE_DB_HOST"`
		DBPort     string `env:"BRIDGE_DB_PORT"`
		DBUser     string `env:"BRIDGE_DB_USER"`
		DBPassword string `env:"BRIDGE_DB_PASSWORD"`
		DBName     string `env:"BRIDGE_DB_NAME"`
		DBSSLMode  string `env:"BRIDGE_DB_SSLMODE"`
	}
	MigrationsPath string `env:"BRIDGE_MIGRATIONS_PATH"`

	KafkaURL             string `env:"KAFKA_BROKER_URL"`
	KafkaOrderEventTopic string `env:"KAFKA_ORDER_EVENT_TOPIC"`
	KafkaConsumerGroup   string `env:"KAFKA_CONSUMER_GROUP"`
	AsyncIntake          bool   `env:"ASYNC_INTAKE"`

	SynnexEnv            string `env:"SYNNEX_ENV"`
	SynnexUsername       string `env:"SYNNEX_USERNAME"`
	SynnexPassword       string `env:"SYNNEX_PASSWORD"`
	SynnexCustomerNumber string `env:"SYNNEX_CUSTOMER_NO"`
	POPrefix             string `env:"SYNNEX_PO_PREFIX"`
	ShipMethodCode       string `env:"SYNNEX_SHIP_METHOD"`

	SubmitTimeout time.Duration `env:"SYNNEX_SUBMIT_TIMEOUT"`
	PriceTimeout  time.Duration `env:"SYNNEX_PRICE_TIMEOUT"`

	BooksBaseURL string        `env:"BOOKS_BASE_URL"`
	BooksOrgID   string        `env:"BOOKS_ORG_ID"`
	BooksToken   string        `env:"BOOKS_TOKEN"`
	BooksTimeout time.Duration `env:"BOOKS_TIMEOUT"`

	CatalogSyncRetries int           `env:"CATALOG_SYNC_RETRIES"`
	CatalogSyncPause   time.Duration `env:"CATALOG_SYNC_PAUSE"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvOrDefault("HTTP_PORT", "8080")

	cfg.DBConfig.DBHost = getEnvOrDefault("BRIDGE_DB_HOST", "localhost")
	cfg.DBConfig.DBPort = getEnvOrDefault("BRIDGE_DB_PORT", "5432")
	cfg.DBConfig.DBUser = getEnvOrDefault("BRIDGE_DB_USER", "postgres")
	cfg.DBConfig.DBPassword = getEnvOrDefault("BRIDGE_DB_PASSWORD", "postgres")
	cfg.DBConfig.DBName = getEnvOrDefault("BRIDGE_DB_NAME", "bridge_db")
	cfg.DBConfig.DBSSLMode = getEnvOrDefault("BRIDGE_DB_SSLMODE", "disable")
	cfg.MigrationsPath = getEnvOrDefault("BRIDGE_MIGRATIONS_PATH", "file://migrations")

	cfg.KafkaURL = getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092")
	cfg.KafkaOrderEventTopic = getEnvOrDefault("KAFKA_ORDER_EVENT_TOPIC", "storefront_order_events")
	cfg.KafkaConsumerGroup = getEnvOrDefault("KAFKA_CONSUMER_GROUP", "fulfillment-bridge-group")

	asyncIntake, err := strconv.ParseBool(getEnvOrDefault("ASYNC_INTAKE", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid ASYNC_INTAKE: %w", err)
	}
	cfg.AsyncIntake = asyncIntake

	// Anything other than an explicit "prod" keeps the bridge pointed at the
	// distributor's test endpoints.
	cfg.SynnexEnv = getEnvOrDefault("SYNNEX_ENV", "test")
	cfg.SynnexUsername = os.Getenv("SYNNEX_USERNAME")
	cfg.SynnexPassword = os.Getenv("SYNNEX_PASSWORD")
	cfg.SynnexCustomerNumber = os.Getenv("SYNNEX_CUSTOMER_NO")
	if cfg.SynnexEnv == "prod" {
		if cfg.SynnexUsername == "" || cfg.SynnexPassword == "" || cfg.SynnexCustomerNumber == "" {
			return nil, fmt.Errorf("SYNNEX_USERNAME, SYNNEX_PASSWORD and SYNNEX_CUSTOMER_NO are required when SYNNEX_ENV=prod")
		}
	}
	cfg.POPrefix = getEnvOrDefault("SYNNEX_PO_PREFIX", "BB-")
	cfg.ShipMethodCode = getEnvOrDefault("SYNNEX_SHIP_METHOD", "FG")

	cfg.SubmitTimeout, err = parseDurationEnv("SYNNEX_SUBMIT_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	cfg.PriceTimeout, err = parseDurationEnv("SYNNEX_PRICE_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	cfg.BooksBaseURL = getEnvOrDefault("BOOKS_BASE_URL", "https://www.zohoapis.com/books/v3")
	cfg.BooksOrgID = os.Getenv("BOOKS_ORG_ID")
	cfg.BooksToken = os.Getenv("BOOKS_TOKEN")
	cfg.BooksTimeout, err = parseDurationEnv("BOOKS_TIMEOUT", "20s")
	if err != nil {
		return nil, err
	}

	retries, err := strconv.Atoi(getEnvOrDefault("CATALOG_SYNC_RETRIES", "3"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_SYNC_RETRIES: %w", err)
	}
	cfg.CatalogSyncRetries = retries
	cfg.CatalogSyncPause, err = parseDurationEnv("CATALOG_SYNC_PAUSE", "2s")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func parseDurationEnv(key, defaultValue string) (time.Duration, error) {
	raw := getEnvOrDefault(key, defaultValue)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBConfig.DBHost, c.DBConfig.DBPort, c.DBConfig.DBUser, c.DBConfig.DBPassword, c.DBConfig.DBName, c.DBConfig.DBSSLMode)
}

func (c *Config) GetDBMigrationConnectionString() string {
	return fmt.Sprintf("%s:%s@%s:%s/%s?sslmode=%s",
		c.DBConfig.DBUser, c.DBConfig.DBPassword, c.DBConfig.DBHost, c.DBConfig.DBPort, c.DBConfig.DBName, c.DBConfig.DBSSLMode)
}

func (c *Config) GetKafkaBrokers() []string {
	return []string{c.KafkaURL}
}

// SynnexOrderEndpoint returns the distributor PO submission endpoint. Only an
// explicit SYNNEX_ENV=prod selects production.
func (c *Config) SynnexOrderEndpoint() string {
	if c.SynnexEnv == "prod" {
		return synnexProdOrderEndpoint
	}
	return synnexTestOrderEndpoint
}

func (c *Config) SynnexPriceEndpoint() string {
	if c.SynnexEnv == "prod" {
		return synnexProdPriceEndpoint
	}
	return synnexTestPriceEndpoint
}
