package store

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/valyala/fasthttp"
)

// decodeBody returns response body with content encoding removed.
func decodeBody(resp *fasthttp.Response) ([]byte, error) {
	body := resp.Body()
	enc := strings.ToLower(strings.TrimSpace(string(resp.Header.Peek(fasthttp.HeaderContentEncoding))))

	switch enc {
	case "", "identity":
		return body, nil
	case "gzip":
		zr, err := gzip.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("gzip response: %w", err)
		}
		defer zr.Close() //nolint:errcheck

		return io.ReadAll(zr)
	case "br":
		return io.ReadAll(brotli.NewReader(bytes.NewReader(body)))
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}
