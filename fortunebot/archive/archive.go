// Package archive copies approved proof images to S3-compatible storage
// (DigitalOcean Spaces by default) so they outlive Discord's CDN links.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/redlantern/fortunebot/internal/domain/quests"
	"github.com/redlantern/fortunebot/internal/domain/submissions"
)

const (
	maxProofSize    = 25 << 20
	downloadTimeout = 20 * time.Second
	defaultExt      = ".png"
)

var ErrTooLarge = errors.New("proof exceeds the archive size limit")

type Config struct {
	Key      string
	Secret   string
	Region   string
	Bucket   string
	Root     string
	Endpoint string
}

// ObjectPutter is the slice of the S3 client the archive uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Archiver struct {
	client  ObjectPutter
	http    *http.Client
	bucket  string
	root    string
	baseURL string
	newID   func() string
}

// NewSpaces builds an S3 client for cfg. Without an explicit endpoint the
// DigitalOcean Spaces endpoint for the region is used.
func NewSpaces(ctx context.Context, cfg Config) (*Archiver, error) {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.digitaloceanspaces.com", cfg.Region)
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")),
		config.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load spaces config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.Endpoint != ""
	})
	return New(client, nil, cfg), nil
}

func New(client ObjectPutter, httpClient *http.Client, cfg Config) *Archiver {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: downloadTimeout}
	}
	baseURL := strings.TrimSuffix(cfg.Endpoint, "/") + "/" + cfg.Bucket
	if cfg.Endpoint == "" {
		baseURL = fmt.Sprintf("https://%s.%s.digitaloceanspaces.com", cfg.Bucket, cfg.Region)
	}
	return &Archiver{
		client:  client,
		http:    httpClient,
		bucket:  cfg.Bucket,
		root:    strings.Trim(cfg.Root, "/"),
		baseURL: baseURL,
		newID:   uuid.NewString,
	}
}

// ObjectKey is <root>/<quest-slug>/<submission-id>-<id><ext>.
func ObjectKey(root, questTitle string, submissionID int64, id, ext string) string {
	questSlug := slug.Make(questTitle)
	if questSlug == "" {
		questSlug = "quest"
	}
	return path.Join(root, questSlug, fmt.Sprintf("%d-%s%s", submissionID, id, ext))
}

// Archive downloads the submission's proof and stores a public copy. It
// returns the URL of the copy.
func (a *Archiver) Archive(ctx context.Context, sub *submissions.Submission, quest *quests.Quest) (string, error) {
	body, contentType, err := a.download(ctx, sub.ProofURL)
	if err != nil {
		return "", err
	}

	key := ObjectKey(a.root, quest.Title, sub.ID, a.newID(), extension(sub.ProofURL, contentType))
	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof %s: %w", key, err)
	}
	return a.baseURL + "/" + key, nil
}

func (a *Archiver) download(ctx context.Context, proofURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, proofURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("invalid proof url: %w", err)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download proof: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download proof: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProofSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read proof: %w", err)
	}
	if len(body) > maxProofSize {
		return nil, "", ErrTooLarge
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}

// extension takes the file extension from the URL path, falling back to the
// content type.
func extension(proofURL, contentType string) string {
	if u, err := url.Parse(proofURL); err == nil {
		if ext := strings.ToLower(path.Ext(u.Path)); ext != "" {
			return ext
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, _ := mime.ExtensionsByType(mediaType); len(exts) > 0 {
			return exts[0]
		}
	}
	return defaultExt
}
