package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the part of *s3.Client the storage uses.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

type S3 struct {
	root   string
	bucket string
	client S3API
}

func newS3(bucket, root string, client S3API) *S3 {
	return &S3{
		bucket: bucket,
		root:   root,
		client: client,
	}
}

// NewS3 is exported for callers that bring their own client.
func NewS3(bucket, root string, client S3API) Storage {
	return newS3(bucket, root, client)
}

func (s *S3) key(name string) string {
	return strings.TrimPrefix(path.Join(s.root, name), "/")
}

// s3Writer buffers the whole object and uploads it on Close.
type s3Writer struct {
	ctx    context.Context
	key    string
	buffer bytes.Buffer
	closed bool
	s3     *S3
}

func (w *s3Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, fs.ErrClosed
	}
	return w.buffer.Write(p)
}

func (w *s3Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_, err := w.s3.client.PutObject(w.ctx, &s3.PutObjectInput{
		Bucket: aws.String(w.s3.bucket),
		Key:    aws.String(w.key),
		Body:   bytes.NewReader(w.buffer.Bytes()),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", w.key, err)
	}
	return nil
}

func (s *S3) Close() error {
	return nil
}

func (s *S3) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	res, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
		}
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	return res.Body, nil
}

func (s *S3) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return &s3Writer{
		ctx: ctx,
		key: s.key(name),
		s3:  s,
	}, nil
}

// MkdirAll is a no-op: S3 has no directories.
func (s *S3) MkdirAll(string, fs.FileMode) error {
	return nil
}

func (s *S3) Sub(dir string) (Storage, error) {
	return newS3(s.bucket, path.Join(s.root, dir), s.client), nil
}

func (s *S3) Remove(ctx context.Context, name string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(name)),
	})
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", name, err)
	}
	return nil
}

func (s *S3) List(ctx context.Context, dir string) ([]string, error) {
	prefix := s.key(dir)
	if prefix != "" && prefix != "." {
		prefix += "/"
	} else {
		prefix = ""
	}

	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", dir, err)
		}
		for _, object := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(object.Key), prefix)
			if name != "" {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names, nil
}
