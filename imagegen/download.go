package imagegen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// maxDownloadSize caps downloaded image payloads. Generated PNGs run a few
// MB; anything near this limit is not an image.
const maxDownloadSize = 32 << 20

// defaultDownloadTimeout bounds one temporary-URL fetch.
const defaultDownloadTimeout = 60 * time.Second

// downloader fetches generated images from the temporary URLs the provider
// returns. Those URLs expire after about an hour, so images download
// immediately after generation.
//
// Thread Safety: downloader is safe for concurrent use; each download
// creates its own HTTP request.
type downloader struct {
	client *http.Client
}

func newDownloader(client *http.Client) *downloader {
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadTimeout}
	}
	return &downloader{client: client}
}

// fetch downloads one image and returns its raw bytes.
func (d *downloader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownloadFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrDownloadFailed, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrDownloadFailed, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrDownloadFailed)
	}
	return data, nil
}
