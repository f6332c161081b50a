package policies

import (
	"context"
	"io"
)

// PhotoUploader stores binary content and returns a public URL.
type PhotoUploader interface {
	Upload(ctx context.Context, key string, reader io.Reader, contentType string) (publicURL string, err error)
}
