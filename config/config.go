/*
Copyright 2024 Doozez Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package config

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync/atomic"

	"github.com/kelseyhightower/envconfig"

	"github.com/sirupsen/logrus"
)

const (
	DEFAULT_PORT = "5401"
)

var ConfigStore atomic.Value

type ServerConfig struct {
	SSL       bool   `json:"ssl" envconfig:"DOOZEZ_SERVER_SSL"`
	Secure    bool   `json:"secure" envconfig:"DOOZEZ_SERVER_SECURE"`
	SecretKey string `json:"secret_key" envconfig:"DOOZEZ_SERVER_SECRET_KEY"`
	Domain    string `json:"domain" envconfig:"DOOZEZ_SERVER_SSL_DOMAIN"`
	Email     string `json:"ssl_email" envconfig:"DOOZEZ_SERVER_SSL_EMAIL"`
	Port      string `json:"port" envconfig:"DOOZEZ_SERVER_PORT"`
}

type DataSourceConfig struct {
	Dns string `json:"dns" envconfig:"DOOZEZ_DATA_SOURCE_DNS"`
}

type RedisConfig struct {
	Dns           string `json:"dns" envconfig:"DOOZEZ_REDIS_DNS"`
	SkipTLSVerify bool   `json:"skip_tls_verify" envconfig:"DOOZEZ_REDIS_SKIP_TLS_VERIFY"`
}

// GatewayConfig holds the credentials and endpoints for the direct-debit
// payment gateway. The webhook secret is used to verify inbound notification
// signatures on the ingress endpoint.
type GatewayConfig struct {
	BaseURL       string `json:"base_url" envconfig:"DOOZEZ_GATEWAY_BASE_URL"`
	AccessToken   string `json:"access_token" envconfig:"DOOZEZ_GATEWAY_ACCESS_TOKEN"`
	Environment   string `json:"environment" envconfig:"DOOZEZ_GATEWAY_ENVIRONMENT"`
	WebhookSecret string `json:"webhook_secret" envconfig:"DOOZEZ_GATEWAY_WEBHOOK_SECRET"`
	TimeoutSec    int    `json:"timeout_sec" envconfig:"DOOZEZ_GATEWAY_TIMEOUT_SEC"`
}

type QueueConfig struct {
	JobExecutorQueue   string `json:"job_executor_queue" envconfig:"DOOZEZ_JOB_EXECUTOR_QUEUE"`
	EventExecutorQueue string `json:"event_executor_queue" envconfig:"DOOZEZ_EVENT_EXECUTOR_QUEUE"`
	NotificationQueue  string `json:"notification_queue" envconfig:"DOOZEZ_NOTIFICATION_QUEUE"`
}

type RateLimitConfig struct {
	RequestsPerSecond  *float64 `json:"requests_per_second" envconfig:"DOOZEZ_RATE_LIMIT_RPS"`
	Burst              *int     `json:"burst" envconfig:"DOOZEZ_RATE_LIMIT_BURST"`
	CleanupIntervalSec *int     `json:"cleanup_interval_sec" envconfig:"DOOZEZ_RATE_LIMIT_CLEANUP_INTERVAL_SEC"`
}

type SlackWebhook struct {
	WebhookUrl string `json:"webhook_url"`
}

type PushService struct {
	Url     string            `json:"url" envconfig:"DOOZEZ_PUSH_URL"`
	Headers map[string]string `json:"headers"`
}

type Notification struct {
	Slack SlackWebhook `json:"slack"`
	Push  PushService  `json:"push"`
}

type Configuration struct {
	ProjectName  string           `json:"project_name" envconfig:"DOOZEZ_PROJECT_NAME"`
	Server       ServerConfig     `json:"server"`
	DataSource   DataSourceConfig `json:"data_source"`
	Redis        RedisConfig      `json:"redis"`
	Gateway      GatewayConfig    `json:"gateway"`
	Queue        QueueConfig      `json:"queue"`
	Notification Notification     `json:"notification"`
	RateLimit    RateLimitConfig  `json:"rate_limit"`
}

func loadConfigFromFile(file string) error {
	var cnf Configuration
	_, err := os.Stat(file)
	if err == nil {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		err = json.NewDecoder(f).Decode(&cnf)
		if err != nil {
			return err
		}

	} else if errors.Is(err, os.ErrNotExist) {
		log.Println("config json not passed, will use env variables")
	}

	// override config from environment variables
	err = envconfig.Process("doozez", &cnf)
	if err != nil {
		return err
	}

	err = cnf.validateAndAddDefaults()
	if err != nil {
		return err
	}

	ConfigStore.Store(&cnf)
	return err
}

func InitConfig(configFile string) error {
	logger()
	return loadConfigFromFile(configFile)
}

func Fetch() (*Configuration, error) {
	config := ConfigStore.Load()
	c, ok := config.(*Configuration)
	if !ok {
		return nil, errors.New("config not loaded from file. Create a json file called doozez.json with your config ❌")
	}
	return c, nil
}

func (cnf *Configuration) validateAndAddDefaults() error {
	if cnf.ProjectName == "" {
		log.Println("Warning: Project name is empty. Setting a default name.")
		cnf.ProjectName = "Doozez Server"
	}

	if cnf.DataSource.Dns == "" {
		log.Println("Error: Data source DNS is empty. It's a required field.")
		return errors.New("data source DNS is required")
	}

	if cnf.Redis.Dns == "" {
		log.Println("Error: Redis DNS is empty. It's a required field.")
		return errors.New("redis DNS is required")
	}

	// Trim white spaces from fields
	cnf.ProjectName = strings.TrimSpace(cnf.ProjectName)
	cnf.Server.Port = strings.TrimSpace(cnf.Server.Port)
	cnf.DataSource.Dns = strings.TrimSpace(cnf.DataSource.Dns)
	cnf.Redis.Dns = strings.TrimSpace(cnf.Redis.Dns)
	cnf.Gateway.BaseURL = strings.TrimSpace(cnf.Gateway.BaseURL)

	// Set default value for Port if it's empty
	if cnf.Server.Port == "" {
		cnf.Server.Port = DEFAULT_PORT
		log.Printf("Warning: Port not specified in config. Setting default port: %s", DEFAULT_PORT)
	}

	if cnf.Gateway.Environment == "" {
		cnf.Gateway.Environment = "sandbox"
	}

	if cnf.Gateway.TimeoutSec == 0 {
		cnf.Gateway.TimeoutSec = 30
	}

	if cnf.Queue.JobExecutorQueue == "" {
		cnf.Queue.JobExecutorQueue = "doozez-job-executor"
	}
	if cnf.Queue.EventExecutorQueue == "" {
		cnf.Queue.EventExecutorQueue = "doozez-event-executor"
	}
	if cnf.Queue.NotificationQueue == "" {
		cnf.Queue.NotificationQueue = "doozez-notification"
	}

	// Rate limiting is disabled by default (when both RPS and Burst are nil)
	if cnf.RateLimit.RequestsPerSecond != nil && cnf.RateLimit.Burst == nil {
		defaultBurst := 2 * int(*cnf.RateLimit.RequestsPerSecond)
		cnf.RateLimit.Burst = &defaultBurst
		log.Printf("Warning: Rate limit burst not specified. Setting default value: %d", defaultBurst)
	}
	if cnf.RateLimit.RequestsPerSecond == nil && cnf.RateLimit.Burst != nil {
		defaultRPS := float64(*cnf.RateLimit.Burst) / 2
		cnf.RateLimit.RequestsPerSecond = &defaultRPS
		log.Printf("Warning: Rate limit RPS not specified. Setting default value: %.2f", defaultRPS)
	}

	// Set default cleanup interval if not specified
	if cnf.RateLimit.CleanupIntervalSec == nil {
		defaultCleanup := 10800 // 3 hours in seconds
		cnf.RateLimit.CleanupIntervalSec = &defaultCleanup
		log.Printf("Warning: Rate limit cleanup interval not specified. Setting default value: %d seconds", defaultCleanup)
	}

	return nil
}

// MockConfig sets a mock configuration for testing purposes.
func MockConfig(mockConfig *Configuration) {
	ConfigStore.Store(mockConfig)
}

func logger() {
	logger := logrus.New()
	log.SetOutput(logger.Writer())
}
