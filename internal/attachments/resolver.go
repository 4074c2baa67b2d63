package attachments

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/caffeinepub/xoroots-football-coaching-platform/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const probeTimeout = 10 * time.Second

// ByteFetcher retrieves the raw bytes behind a blob reference. The facade
// client satisfies it.
type ByteFetcher interface {
	FetchBlobBytes(ctx context.Context, blob models.Blob) ([]byte, error)
}

// ResolverConfig configures the attachment resolver.
type ResolverConfig struct {
	// TempDir receives locally materialized resources. Empty uses the OS
	// temp directory.
	TempDir string
	// AWS settings for the bucket fallback. When Region is empty the S3
	// fallback is disabled and only the facade byte fetch is tried.
	AWSRegion    string
	AWSAccessKey string
	AWSSecretKey string
}

// Resolver turns blob references into displayable resources: the direct URL
// when it loads, otherwise a local file built from fetched bytes.
type Resolver struct {
	fetcher    ByteFetcher
	httpClient *http.Client
	s3Client   *s3.Client
	tempDir    string
}

// NewResolver creates a new attachment resolver.
func NewResolver(fetcher ByteFetcher, cfg ResolverConfig) (*Resolver, error) {
	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}

	r := &Resolver{
		fetcher:    fetcher,
		httpClient: &http.Client{Timeout: probeTimeout},
		tempDir:    tempDir,
	}

	if cfg.AWSRegion != "" {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithRegion(cfg.AWSRegion),
		}
		if cfg.AWSAccessKey != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
			))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		r.s3Client = s3.NewFromConfig(awsCfg)
	}

	return r, nil
}

// Resource is a displayable attachment location. Local resources must be
// released when the consuming view is done with them.
type Resource struct {
	// URL locates the resource; a file:// URL for local resources.
	URL string
	// MimeType is the effective type after inference and sniffing.
	MimeType string
	// Local reports whether Release removes an on-disk file.
	Local bool

	path string
}

// Release removes the local file backing the resource, if any. It is safe to
// call on remote resources and more than once.
func (r *Resource) Release() {
	if !r.Local || r.path == "" {
		return
	}
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", r.path).Msg("Failed to remove local attachment resource")
	}
	r.path = ""
	r.Local = false
}

// Resolve produces a usable resource for the attachment. The direct URL is
// probed first; on failure the raw bytes are fetched (through the facade,
// then straight from the hosting bucket) and written to a local file. When
// every byte path fails the direct URL is returned as a last resort so the
// caller still has something to render.
func (r *Resolver) Resolve(ctx context.Context, att models.Attachment) (*Resource, error) {
	direct := &Resource{
		URL:      att.Blob.URL,
		MimeType: EnsureMimeType(att.MimeType, att.FileName),
	}

	if r.probeDirect(ctx, att.Blob.URL) {
		return direct, nil
	}

	data, err := r.fetchBytes(ctx, att.Blob)
	if err != nil {
		log.Warn().
			Err(err).
			Str("file_name", att.FileName).
			Msg("Attachment byte fetch failed, falling back to direct URL")
		return direct, nil
	}

	mimeType := att.MimeType
	if mimeType == "" || mimeType == genericMime {
		if sniffed := SniffMimeType(data); sniffed != "" {
			mimeType = sniffed
		} else {
			mimeType = EnsureMimeType(att.MimeType, att.FileName)
		}
	}

	path, err := r.writeLocal(data, att.FileName, mimeType)
	if err != nil {
		return nil, err
	}
	return &Resource{
		URL:      "file://" + path,
		MimeType: mimeType,
		Local:    true,
		path:     path,
	}, nil
}

// Download writes the attachment bytes to w and returns the effective MIME
// type, for save-to-disk flows.
func (r *Resolver) Download(ctx context.Context, att models.Attachment, w io.Writer) (string, error) {
	data, err := r.fetchBytes(ctx, att.Blob)
	if err != nil {
		return "", fmt.Errorf("failed to download attachment %q: %w", att.FileName, err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to write attachment %q: %w", att.FileName, err)
	}
	return EnsureMimeType(att.MimeType, att.FileName), nil
}

func (r *Resolver) probeDirect(ctx context.Context, rawURL string) bool {
	if rawURL == "" {
		return false
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func (r *Resolver) fetchBytes(ctx context.Context, blob models.Blob) ([]byte, error) {
	data, err := r.fetcher.FetchBlobBytes(ctx, blob)
	if err == nil {
		return data, nil
	}

	if r.s3Client != nil {
		if bucket, key, ok := parseS3URL(blob.URL); ok {
			out, s3Err := r.s3Client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(bucket),
				Key:    aws.String(key),
			})
			if s3Err == nil {
				defer out.Body.Close()
				return io.ReadAll(out.Body)
			}
			log.Warn().Err(s3Err).Str("bucket", bucket).Str("key", key).
				Msg("S3 fallback fetch failed")
		}
	}
	return nil, err
}

func (r *Resolver) writeLocal(data []byte, fileName, mimeType string) (string, error) {
	ext := filepath.Ext(fileName)
	if ext == "" {
		for candidate, mt := range extensionMimes {
			if mt == mimeType {
				ext = "." + candidate
				break
			}
		}
	}
	f, err := os.CreateTemp(r.tempDir, "attachment-*"+ext)
	if err != nil {
		return "", fmt.Errorf("failed to create local resource: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write local resource: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to close local resource: %w", err)
	}
	return f.Name(), nil
}

// virtual-hosted style bucket URLs, e.g.
// https://my-bucket.s3.us-east-1.amazonaws.com/some/key
var s3HostPattern = regexp.MustCompile(`^([^.]+)\.s3[.-]([a-z0-9-]+)\.amazonaws\.com$`)

func parseS3URL(rawURL string) (bucket, key string, ok bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", false
	}
	m := s3HostPattern.FindStringSubmatch(u.Host)
	if m == nil {
		return "", "", false
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", false
	}
	return m[1], key, true
}
