// Package secrets reads encrypted parameters from SSM Parameter Store.
package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/flappy-detector/internal/secrets")

// SSMAPI defines the SSM operations required for reading secrets.
type SSMAPI interface {
	GetParameter(
		ctx context.Context,
		params *ssm.GetParameterInput,
		optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Loader reads SecureString parameters.
type Loader struct {
	client SSMAPI
}

// NewLoader creates a new Loader.
func NewLoader(client SSMAPI) *Loader {
	return &Loader{client: client}
}

// Get returns the decrypted value of the named parameter.
func (l *Loader) Get(ctx context.Context, name string) (string, error) {
	ctx, span := tracer.Start(ctx, "secrets.get")
	defer span.End()
	span.SetAttributes(attribute.String("ssm.parameter", name))

	out, err := l.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("cannot get parameter %q: %w", name, err)
	}

	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return "", fmt.Errorf("parameter %q is empty", name)
	}

	return aws.ToString(out.Parameter.Value), nil
}
