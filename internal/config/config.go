// Package config loads the environment configuration of the ingest and
// detect Lambdas.
package config

import (
	"fmt"
	"time"

	"github.com/ab0utbla-k/flappy-detector/internal/env"
)

type AlertTarget string

const (
	AlertDatadog     AlertTarget = "datadog"
	AlertSNS         AlertTarget = "sns"
	AlertEventBridge AlertTarget = "eventbridge"
)

type MetricTarget string

const (
	MetricNone       MetricTarget = "none"
	MetricDatadog    MetricTarget = "datadog"
	MetricCloudWatch MetricTarget = "cloudwatch"
)

const (
	defaultMaxAttempts     = 5
	defaultDatadogSite     = "datadoghq.com"
	defaultDatadogAPIKey   = "/account/app_auth/datadog/api_key"
	defaultDatadogAppKey   = "/account/app_auth/datadog/flappy_detector_app_key"
	defaultEventBusName    = "default"
	defaultMetricNamespace = "FlappyDetector"
)

// Common holds settings shared by both Lambdas.
type Common struct {
	AWSRegion   string
	EventTable  string
	MaxAttempts int
}

// Ingest is the configuration of the ingest Lambda.
type Ingest struct {
	Common
	CrossAccountRoleName string
}

// Detect is the configuration of the detect Lambda.
type Detect struct {
	Common

	MaxEventAge       time.Duration
	MinNumberOfEvents int
	MinSpread         int

	AlertTarget  AlertTarget
	MetricTarget MetricTarget

	DatadogAPIKeyParameter string
	DatadogAppKeyParameter string
	DatadogSite            string

	SNSTopicARN     string
	EventBusName    string
	MetricNamespace string
}

// UsesDatadog reports whether Datadog credentials are needed.
func (d *Detect) UsesDatadog() bool {
	return d.AlertTarget == AlertDatadog || d.MetricTarget == MetricDatadog
}

func loadCommon() (Common, error) {
	var c Common
	var err error

	if c.AWSRegion, err = env.GetRequired("AWS_REGION", env.ParseNonEmptyString); err != nil {
		return Common{}, err
	}
	if c.EventTable, err = env.GetRequired("EVENT_TABLE", env.ParseNonEmptyString); err != nil {
		return Common{}, err
	}
	if c.MaxAttempts, err = env.Get("AWS_MAX_ATTEMPTS", defaultMaxAttempts, env.ParsePositiveInt); err != nil {
		return Common{}, err
	}

	return c, nil
}

// LoadIngest reads the ingest configuration from the environment.
func LoadIngest() (*Ingest, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	role, err := env.GetRequired("CROSS_ACCOUNT_ROLE_NAME", env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}

	return &Ingest{
		Common:               common,
		CrossAccountRoleName: role,
	}, nil
}

// LoadDetect reads the detect configuration from the environment. Thresholds
// are required and validated.
func LoadDetect() (*Detect, error) {
	common, err := loadCommon()
	if err != nil {
		return nil, err
	}

	cfg := &Detect{Common: common}

	if cfg.MaxEventAge, err = env.GetRequired("MAX_EVENT_AGE_MINUTES", env.ParseMinutes); err != nil {
		return nil, err
	}
	if cfg.MinNumberOfEvents, err = env.GetRequired("MIN_NUM_EVENTS", env.ParsePositiveInt); err != nil {
		return nil, err
	}
	if cfg.MinSpread, err = env.GetRequired("MIN_SPREAD", env.ParseNonNegativeInt); err != nil {
		return nil, err
	}

	target, err := env.Get("ALERT_TARGET", string(AlertDatadog), env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.AlertTarget = AlertTarget(target)

	switch cfg.AlertTarget {
	case AlertDatadog:
	case AlertSNS:
		if cfg.SNSTopicARN, err = env.GetRequired("SNS_TOPIC_ARN", env.ParseNonEmptyString); err != nil {
			return nil, err
		}
	case AlertEventBridge:
		if cfg.EventBusName, err = env.Get("EVENT_BUS_NAME", defaultEventBusName, env.ParseNonEmptyString); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid alert target: %s", target)
	}

	metricTarget, err := env.Get("METRIC_TARGET", string(MetricNone), env.ParseNonEmptyString)
	if err != nil {
		return nil, err
	}
	cfg.MetricTarget = MetricTarget(metricTarget)

	switch cfg.MetricTarget {
	case MetricNone, MetricDatadog:
	case MetricCloudWatch:
		if cfg.MetricNamespace, err = env.Get("METRIC_NAMESPACE", defaultMetricNamespace, env.ParseNonEmptyString); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid metric target: %s", metricTarget)
	}

	if cfg.UsesDatadog() {
		if cfg.DatadogAPIKeyParameter, err = env.Get("DATADOG_API_KEY_PARAMETER", defaultDatadogAPIKey, env.ParseNonEmptyString); err != nil {
			return nil, err
		}
		if cfg.DatadogAppKeyParameter, err = env.Get("DATADOG_APP_KEY_PARAMETER", defaultDatadogAppKey, env.ParseNonEmptyString); err != nil {
			return nil, err
		}
		if cfg.DatadogSite, err = env.Get("DATADOG_SITE", defaultDatadogSite, env.ParseNonEmptyString); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}
