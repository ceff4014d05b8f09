package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/vango-dev/signals/internal/errors"
	"github.com/vango-dev/signals/pkg/instrument"
	"github.com/vango-dev/signals/pkg/reactive"
	"github.com/vango-dev/signals/pkg/snapshot"
)

// openStore opens the snapshot store named by the configuration.
func (a *app) openStore(ctx context.Context) (snapshot.Store, error) {
	sc := a.cfg.Snapshot
	switch sc.Store {
	case "file":
		return snapshot.NewFileStore(a.cfg.SnapshotDir())
	case "memory":
		a.logger.Warn("memory snapshot store does not outlive the process")
		return snapshot.NewMemoryStore(), nil
	case "s3":
		return snapshot.NewS3Store(newS3Client(sc.Region, sc.Endpoint), sc.Bucket, sc.Prefix), nil
	default:
		return nil, errors.New("E400").WithSubject(sc.Store)
	}
}

// newS3Client builds a client from the environment's static AWS
// credentials. An endpoint selects an S3-compatible service.
func newS3Client(region, endpoint string) *s3.Client {
	if region == "" {
		region = os.Getenv("AWS_REGION")
	}
	opts := s3.Options{
		Region:      region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
		opts.UsePathStyle = true
	}
	return s3.New(opts)
}

func envCredentials(context.Context) (aws.Credentials, error) {
	creds := aws.Credentials{
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}
	if creds.AccessKeyID == "" || creds.SecretAccessKey == "" {
		return aws.Credentials{}, errors.New("S205").
			WithDetail("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set for the s3 snapshot store")
	}
	return creds, nil
}

// observer returns the observer attached to demo scopes outside serve.
func (a *app) observer() reactive.Observer {
	return instrument.NewLogger(a.logger)
}
