package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/223MapAction/Model-deploy/internal/config"
)

// ImageFetcher resolves uploaded image names against the image server and
// downloads the raw bytes.
type ImageFetcher struct {
	baseURL    string
	httpClient *http.Client
}

func NewImageFetcher(cfg config.ImageServerConfig) *ImageFetcher {
	return &ImageFetcher{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ImageURL builds the public URL for an uploaded image name. Only the
// basename is kept; clients sometimes send full storage paths.
func (f *ImageFetcher) ImageURL(imageName string) string {
	parts := strings.Split(imageName, "/")
	return f.baseURL + "/" + parts[len(parts)-1]
}

// Fetch downloads the image bytes for the given uploaded name.
func (f *ImageFetcher) Fetch(ctx context.Context, imageName string) ([]byte, error) {
	url := f.ImageURL(imageName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image server returned status %d for %s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("image server returned an empty body for %s", url)
	}
	return data, nil
}
