package service

import (
	"context"
	"fmt"

	"app/internal/config"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// SecretService reads application secrets from Google Secret Manager.
type SecretService interface {
	Get(ctx context.Context, name string) (string, error)
}

type secretService struct {
	client    *secretmanager.Client
	projectID string
}

// NewSecretService creates a new SecretService for the configured project.
func NewSecretService(ctx context.Context, cfg *config.Config) (SecretService, error) {
	if cfg.GCPProjectID == "" {
		return nil, fmt.Errorf("GCP Project ID is not set for the current environment")
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secret Manager client: %w", err)
	}

	return &secretService{
		client:    client,
		projectID: cfg.GCPProjectID,
	}, nil
}

func (s *secretService) Get(ctx context.Context, name string) (string, error) {
	resourceName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", s.projectID, name)

	result, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: resourceName,
	})
	if err != nil {
		return "", fmt.Errorf("failed to access secret version: %w", err)
	}

	return string(result.Payload.Data), nil
}
