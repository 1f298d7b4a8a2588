package storage

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/USA-RedDragon/arm-panel/internal/config"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type StorageManager interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	// Create truncates name. Data is only durable once the writer is closed.
	Create(ctx context.Context, name string) (io.WriteCloser, error)
	MkdirAll(name string, perm fs.FileMode) error
	Remove(ctx context.Context, name string) error
	// List returns the names of the files directly under dir.
	List(ctx context.Context, dir string) ([]string, error)
	Sub(dir string) (Storage, error)
}

type Storage interface {
	StorageManager
	Close() error
}

func NewStorage(ctx context.Context, cfg *config.Config) (Storage, error) {
	library := cfg.Persistence.Library
	switch library.Driver {
	case config.LibraryDriverFilesystem:
		root := library.FilesystemOptions.Directory
		err := os.MkdirAll(root, 0755)
		if err != nil {
			return nil, fmt.Errorf("failed to create library directory: %w", err)
		}
		return newFilesystem(root)
	case config.LibraryDriverS3:
		opts := []func(*awsconfig.LoadOptions) error{}
		if library.S3Options.Region != "" {
			opts = append(opts, awsconfig.WithRegion(library.S3Options.Region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.UsePathStyle = true
			if library.S3Options.Endpoint != "" {
				o.BaseEndpoint = aws.String(library.S3Options.Endpoint)
			}
		})
		return newS3(library.S3Options.Bucket, "", client), nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", library.Driver)
	}
}
