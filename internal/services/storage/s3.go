// Package storage uploads dispute evidence files to S3-compatible object
// storage. MinIO is supported for local development via a custom endpoint.
package storage

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"

	"carepay/internal/config"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

type Client struct {
	s3Client *s3.S3
	bucket   string
}

// FromEnv builds an S3 client from S3_* environment variables.
func FromEnv() (*Client, error) {
	awsConfig := &aws.Config{
		Region: aws.String(config.GetEnv("S3_REGION", "ap-southeast-1")),
		Credentials: credentials.NewStaticCredentials(
			config.GetEnv("S3_ACCESS_KEY_ID", ""),
			config.GetEnv("S3_SECRET_ACCESS_KEY", ""),
			"",
		),
	}

	if endpoint := config.GetEnv("S3_ENDPOINT", ""); endpoint != "" {
		awsConfig.Endpoint = aws.String(endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
		if !config.GetBoolEnv("S3_USE_SSL", true) {
			awsConfig.DisableSSL = aws.Bool(true)
		}
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &Client{
		s3Client: s3.New(sess),
		bucket:   config.GetEnv("S3_BUCKET", "carepay-evidence"),
	}, nil
}

// UploadEvidence stores one evidence file under a dispute-scoped key and
// returns its public URL.
func (c *Client) UploadEvidence(disputeID uint, filename string, file multipart.File, contentType string) (string, error) {
	buf := bytes.NewBuffer(nil)
	if _, err := io.Copy(buf, file); err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}

	key := fmt.Sprintf("disputes/%d/%s%s", disputeID, uuid.NewString(), path.Ext(filename))
	_, err := c.s3Client.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}
	return c.objectURL(key), nil
}

func (c *Client) objectURL(key string) string {
	endpoint := aws.StringValue(c.s3Client.Config.Endpoint)
	if endpoint != "" && !strings.Contains(endpoint, "amazonaws.com") {
		protocol := "http"
		if c.s3Client.Config.DisableSSL == nil || !*c.s3Client.Config.DisableSSL {
			protocol = "https"
		}
		endpoint = strings.TrimPrefix(endpoint, "http://")
		endpoint = strings.TrimPrefix(endpoint, "https://")
		return fmt.Sprintf("%s://%s/%s/%s", protocol, endpoint, c.bucket, key)
	}

	region := aws.StringValue(c.s3Client.Config.Region)
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, region, key)
}
