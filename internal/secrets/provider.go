package secrets

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// Provider fetches a secret string by identifier.
type Provider interface {
	GetSecretString(ctx context.Context, id string) (string, error)
}

// SecretsManagerAPI is the slice of the Secrets Manager client the provider
// uses.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type ManagerProvider struct {
	client SecretsManagerAPI
}

func NewManagerProvider(client SecretsManagerAPI) *ManagerProvider {
	return &ManagerProvider{client: client}
}

func (p *ManagerProvider) GetSecretString(ctx context.Context, id string) (string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(id),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get secret value: %w", err)
	}

	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", id)
	}

	return *out.SecretString, nil
}
