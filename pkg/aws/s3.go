package aws

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectStore stores product media in one bucket.
type ObjectStore struct {
	client     *s3.Client
	presigner  *s3.PresignClient
	uploader   *manager.Uploader
	bucket     string
	publicBase string
}

// NewObjectStore builds a store for bucket. publicBase is the URL prefix
// objects are served from (a CDN domain); when empty it is derived from the
// custom endpoint or the regional S3 host.
func NewObjectStore(cfg sdkaws.Config, bucket, publicBase string) *ObjectStore {
	endpoint := CustomEndpoint()
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	})
	if publicBase == "" {
		if endpoint != "" {
			publicBase = fmt.Sprintf("%s/%s", strings.TrimRight(endpoint, "/"), bucket)
		} else {
			publicBase = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
		}
	}
	return &ObjectStore{
		client:     client,
		presigner:  s3.NewPresignClient(client),
		uploader:   manager.NewUploader(client),
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
	}
}

// Upload streams body to key and returns its public URL.
func (o *ObjectStore) Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := o.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(o.bucket),
		Key:         sdkaws.String(key),
		Body:        body,
		ContentType: sdkaws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return PublicURL(o.publicBase, key), nil
}

// PresignPut returns a presigned PUT URL for key plus the headers the client
// must send with it.
func (o *ObjectStore) PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, map[string]string, error) {
	presigned, err := o.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      sdkaws.String(o.bucket),
		Key:         sdkaws.String(key),
		ContentType: sdkaws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to presign put object: %w", err)
	}
	headers := make(map[string]string)
	for k, v := range presigned.SignedHeader {
		if len(v) > 0 {
			headers[k] = v[0]
		}
	}
	return presigned.URL, headers, nil
}

// Delete removes key from the bucket.
func (o *ObjectStore) Delete(ctx context.Context, key string) error {
	_, err := o.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: sdkaws.String(o.bucket),
		Key:    sdkaws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// URLFor returns the public URL of key.
func (o *ObjectStore) URLFor(key string) string {
	return PublicURL(o.publicBase, key)
}

// KeyFor returns the object key behind a public URL served by this store.
func (o *ObjectStore) KeyFor(url string) (string, bool) {
	return KeyFromURL(o.publicBase, url)
}

// PublicURL joins base and key.
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}

// KeyFromURL strips base from url. It reports false for foreign URLs.
func KeyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if base == "" || !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	return key, key != ""
}
