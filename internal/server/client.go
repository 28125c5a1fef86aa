package server

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

// EncodeContent applies the upload encoding: bzip2, then hex.
func EncodeContent(markdown string) (string, error) {
	var buf bytes.Buffer
	zw, err := bzip2.NewWriter(&buf, &bzip2.WriterConfig{Level: bzip2.BestCompression})
	if err != nil {
		return "", fmt.Errorf("creating bzip2 writer: %w", err)
	}
	if _, err := io.WriteString(zw, markdown); err != nil {
		return "", fmt.Errorf("compressing: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("compressing: %w", err)
	}
	return hex.EncodeToString(buf.Bytes()), nil
}

// Client publishes posts to a running site.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// Publish uploads up to the admin endpoint and returns the post URL.
func (c *Client) Publish(ctx context.Context, up PostUpload) (string, error) {
	body, err := json.Marshal(up)
	if err != nil {
		return "", fmt.Errorf("encoding upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(c.BaseURL, "/")+"/admin/posts", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publishing: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&e)
		if e.Error == "" {
			e.Error = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%w: server answered %d: %s", errForStatus(resp.StatusCode), resp.StatusCode, e.Error)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	return out.URL, nil
}

// errForStatus maps an admin response status back to a sentinel.
func errForStatus(status int) error {
	switch status {
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrBadRequest
	default:
		return ErrUpload
	}
}
