package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-lambda-go/otellambda"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/ab0utbla-k/flappy-detector/internal/alert"
	"github.com/ab0utbla-k/flappy-detector/internal/config"
	"github.com/ab0utbla-k/flappy-detector/internal/detect"
	"github.com/ab0utbla-k/flappy-detector/internal/handler"
	"github.com/ab0utbla-k/flappy-detector/internal/secrets"
	"github.com/ab0utbla-k/flappy-detector/internal/store"
	"github.com/ab0utbla-k/flappy-detector/internal/telemetry"
)

func main() {
	startTime := time.Now()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	logger.Info("starting flappy detector")

	cfg, err := config.LoadDetect()
	if err != nil {
		logger.Error("cannot load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithRetryMode(aws.RetryModeAdaptive),
		awsconfig.WithRetryMaxAttempts(cfg.MaxAttempts),
	)
	if err != nil {
		logger.Error("cannot load aws config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	otelaws.AppendMiddlewares(&awsCfg.APIOptions)

	tp, err := telemetry.NewTracerProvider(ctx, "detect")
	if err != nil {
		logger.Error("cannot initialize tracer provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("cannot shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	sender, err := alert.NewSender(ctx, awsCfg, cfg, secrets.NewLoader(ssm.NewFromConfig(awsCfg)))
	if err != nil {
		logger.Error("cannot create sender", slog.String("error", err.Error()))
		os.Exit(1)
	}

	records := store.NewDynamoDB(dynamodb.NewFromConfig(awsCfg), cfg.EventTable, logger)
	detector, err := detect.NewDetector(records, sender, detect.Thresholds{
		MaxEventAge:       cfg.MaxEventAge,
		MinNumberOfEvents: cfg.MinNumberOfEvents,
		MinSpread:         cfg.MinSpread,
	}, logger)
	if err != nil {
		logger.Error("cannot create detector", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info(
		"started flappy detector",
		slog.String("alertTarget", string(cfg.AlertTarget)),
		slog.String("metricTarget", string(cfg.MetricTarget)),
		slog.Duration("maxEventAge", cfg.MaxEventAge),
		slog.Int("minNumberOfEvents", cfg.MinNumberOfEvents),
		slog.Int("minSpread", cfg.MinSpread),
		slog.Float64("initDurationSec", time.Since(startTime).Seconds()),
	)

	h := handler.NewDetectHandler(detector, logger)
	lambda.Start(
		otellambda.InstrumentHandler(
			h.HandleRequest,
			otellambda.WithTracerProvider(tp),
			otellambda.WithFlusher(tp)),
	)
}
