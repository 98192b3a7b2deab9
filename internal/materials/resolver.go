// Package materials turns catalog document paths into URLs the browser can
// embed, either from the local static directory or as presigned S3 links.
package materials

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/iliyamo/oxbridge-lms/internal/config"
)

// ErrInvalidPath is returned for absolute paths or paths that escape the
// materials root.
var ErrInvalidPath = errors.New("materials: invalid document path")

// Resolver maps a document path to a URL.
type Resolver interface {
	Resolve(ctx context.Context, path string) (string, error)
}

// New picks the S3 resolver when a bucket is configured and the local one
// otherwise.
func New(ctx context.Context, cfg config.Config) (Resolver, error) {
	if cfg.MaterialsS3Bucket == "" {
		return NewLocal(LocalRoute), nil
	}
	return NewS3(ctx, S3Options{
		Bucket:    cfg.MaterialsS3Bucket,
		Prefix:    cfg.MaterialsS3Prefix,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		TTL:       cfg.MaterialsURLTTL,
	})
}

func clean(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" || strings.HasPrefix(path, "/") || strings.Contains(path, "\\") {
		return "", ErrInvalidPath
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidPath
		}
	}
	return path, nil
}

func escapePath(path string) string {
	segs := strings.Split(path, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
