// Runtime configuration, read from the environment
package qaconfig

import (
	"fmt"
	"os"
	"strconv"

	"github.com/function61/gokit/envvar"
	"github.com/function61/lambda-queuealarms/pkg/qaexec"
)

const (
	DefaultAlarmSuffix      = "-cloudwatch-alarm"
	DefaultThreshold        = 5
	DefaultPlanLocation     = "queue-alarms-plan.json"
	DefaultApplyConcurrency = 1
)

type Config struct {
	Region           string
	AlarmSuffix      string
	DefaultThreshold int
	AlertTopic       string // SNS topic ARN. alarm actions + outcome notification
	AlertmanagerUrl  string // optional. lambda-alertmanager API that also receives the outcome
	MetricPeriod     int    // seconds
	PlanLocation     string // local path or s3://bucket/key
	Concurrency      int
}

// AWS_REGION is required. ALERT_TOPIC is required only for applying, see RequireAlertTopic()
func FromEnv() (*Config, error) {
	region, err := envvar.Required("AWS_REGION")
	if err != nil {
		return nil, err
	}

	defaultThreshold, err := positiveIntFromEnv("DEFAULT_THRESHOLD", DefaultThreshold)
	if err != nil {
		return nil, err
	}

	metricPeriod, err := positiveIntFromEnv("METRIC_PERIOD", qaexec.DefaultPeriodSeconds)
	if err != nil {
		return nil, err
	}

	concurrency, err := positiveIntFromEnv("APPLY_CONCURRENCY", DefaultApplyConcurrency)
	if err != nil {
		return nil, err
	}

	return &Config{
		Region:           region,
		AlarmSuffix:      stringFromEnv("ALARM_SUFFIX", DefaultAlarmSuffix),
		DefaultThreshold: defaultThreshold,
		AlertTopic:       os.Getenv("ALERT_TOPIC"),
		AlertmanagerUrl:  os.Getenv("ALERTMANAGER_URL"),
		MetricPeriod:     metricPeriod,
		PlanLocation:     stringFromEnv("PLAN_LOCATION", DefaultPlanLocation),
		Concurrency:      concurrency,
	}, nil
}

func (c *Config) RequireAlertTopic() error {
	if c.AlertTopic == "" {
		return fmt.Errorf("ENV not set: %s", "ALERT_TOPIC")
	}

	return nil
}

func (c *Config) EvaluationConfig() qaexec.EvaluationConfig {
	return qaexec.EvaluationConfig{
		PeriodSeconds: c.MetricPeriod,
		ActionTarget:  c.AlertTopic,
	}
}

func stringFromEnv(key string, defaultValue string) string {
	fromEnv := os.Getenv(key)
	if fromEnv == "" {
		return defaultValue
	}

	return fromEnv
}

func positiveIntFromEnv(key string, defaultValue int) (int, error) {
	fromEnvStr := os.Getenv(key)
	if fromEnvStr == "" {
		return defaultValue, nil // default
	}

	value, err := strconv.Atoi(fromEnvStr)
	if err != nil {
		return 0, fmt.Errorf("%s: %v", key, err)
	}

	if value <= 0 {
		return 0, fmt.Errorf("%s: must be positive; got %d", key, value)
	}

	return value, nil
}
