package config

import (
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port           string `envconfig:"PORT" default:"8080"`
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	AllowedOrigins string `envconfig:"ALLOWED_ORIGINS" default:""`

	// 빈 값이면 내장 상품 피드 사용
	ProductFeed string `envconfig:"PRODUCT_FEED" default:""`
	Currency    string `envconfig:"CURRENCY" default:"EGP"`
	Courier     string `envconfig:"COURIER" default:"BOSTA"`

	StoreBackend     string `envconfig:"STORE_BACKEND" default:"memory"`
	StoreDir         string `envconfig:"STORE_DIR" default:"./data"`
	AWSRegion        string `envconfig:"AWS_REGION" default:"ap-northeast-2"`
	StateTableName   string `envconfig:"STATE_TABLE_NAME" default:"storefront_state"`
	DynamoDBEndpoint string `envconfig:"DYNAMODB_ENDPOINT" default:""` // DynamoDB Local 엔드포인트
	MongoDBURI       string `envconfig:"MONGODB_URI" default:""`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"grindctrl"`
	DatabaseURL      string `envconfig:"DATABASE_URL" default:""`
	S3Endpoint       string `envconfig:"S3_ENDPOINT" default:""`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY_ID" default:""`
	S3SecretKey      string `envconfig:"S3_SECRET_ACCESS_KEY" default:""`
	GCSCredentials   string `envconfig:"GCS_CREDENTIALS_FILE" default:""`

	WebhookURL         string        `envconfig:"WEBHOOK_URL" default:""`
	ReturnWebhookURL   string        `envconfig:"RETURN_WEBHOOK_URL" default:""`
	ExchangeWebhookURL string        `envconfig:"EXCHANGE_WEBHOOK_URL" default:""`
	SimulatedDelay     time.Duration `envconfig:"WEBHOOK_SIMULATED_DELAY" default:"1500ms"`
	AttemptTimeout     time.Duration `envconfig:"WEBHOOK_ATTEMPT_TIMEOUT" default:"10s"`
	MaxURLLength       int           `envconfig:"WEBHOOK_MAX_URL_LENGTH" default:"2048"`
	BeaconQueueSize    int           `envconfig:"BEACON_QUEUE_SIZE" default:"64"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic   string `envconfig:"KAFKA_TOPIC" default:"storefront-events"`

	PostmarkToken string `envconfig:"POSTMARK_API_TOKEN" default:""`
	EmailSender   string `envconfig:"EMAIL_SENDER" default:""`

	ToastDuration  time.Duration `envconfig:"TOAST_DURATION" default:"3500ms"`
	ToastWatchdog  time.Duration `envconfig:"TOAST_WATCHDOG" default:"8s"`
	SessionIdleTTL time.Duration `envconfig:"SESSION_IDLE_TTL" default:"2h"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits ALLOWED_ORIGINS into a lookup set.
func (c *Config) Origins() map[string]bool {
	allowed := map[string]bool{}
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed[origin] = true
		}
	}
	return allowed
}
