package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	addPath = "/api/v0/add"
	pinPath = "/api/v0/pin/add"

	// URIScheme prefixes every content id handed back to callers.
	URIScheme = "ipfs://"
)

// File is one file handed to the uploader: its bytes plus the metadata the
// multipart form needs.
type File struct {
	Name string
	Size int64
	Data []byte
}

// DealParams mirror the Filecoin deal options the pinning service accepts
// alongside an upload.
type DealParams struct {
	NumOfCopies                int  `json:"numOfCopies"`
	DealDuration               int  `json:"dealDuration"` // minutes
	Replication                int  `json:"replication"`
	CheckOneByOneStorageStatus bool `json:"checkOneByOneStorageStatus"`
}

// Client talks to the Lighthouse pinning service.
type Client struct {
	baseURL      string
	gatewayHost  string
	apiKey       string
	stallTimeout time.Duration
	httpClient   *http.Client
}

func NewClient(baseURL, gatewayHost, apiKey string, stallTimeout time.Duration) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		gatewayHost:  gatewayHost,
		apiKey:       apiKey,
		stallTimeout: stallTimeout,
		httpClient:   &http.Client{},
	}
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

// Upload streams the file to the add-content endpoint and returns its content
// id prefixed with URIScheme. onProgress receives genuine byte-level
// percentages of the multipart body. dealParams may be nil for a bare upload.
func (c *Client) Upload(ctx context.Context, file File, dealParams *DealParams, onProgress ProgressFunc) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", file.Name)
	if err != nil {
		return "", networkError(err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", networkError(err)
	}

	if dealParams != nil {
		raw, err := json.Marshal(dealParams)
		if err != nil {
			return "", networkError(err)
		}
		if err := writer.WriteField("dealParams", string(raw)); err != nil {
			return "", networkError(err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", networkError(err)
	}

	total := int64(body.Len())
	reader := newProgressReader(body, total, onProgress)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Watchdog: abort the request when the transport has not pulled any body
	// bytes for the stall window. A cancel caused by the watchdog surfaces as
	// a Timeout, not a NetworkError.
	stalled := make(chan struct{})
	tick := c.stallTimeout / 4
	if tick < 50*time.Millisecond {
		tick = 50 * time.Millisecond
	}
	if tick > time.Second {
		tick = time.Second
	}
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if time.Since(reader.lastActivity()) > c.stallTimeout {
					close(stalled)
					cancel()
					return
				}
			}
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+addPath, reader)
	if err != nil {
		return "", networkError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.ContentLength = total

	resp, err := c.httpClient.Do(req)
	if err != nil {
		select {
		case <-stalled:
			return "", timeoutError()
		default:
		}
		return "", networkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", transportError(resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		select {
		case <-stalled:
			return "", timeoutError()
		default:
		}
		return "", networkError(err)
	}

	var parsed addResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", invalidResponseError(err)
	}
	if parsed.Hash == "" {
		return "", invalidResponseError(errors.New("no Hash in response"))
	}

	return URIScheme + parsed.Hash, nil
}

// Pin asks the service to retain an already-uploaded content id.
func (c *Client) Pin(ctx context.Context, cid string) error {
	payload, err := json.Marshal(map[string]string{"cid": StripScheme(cid)})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+pinPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pin failed: HTTP %d", resp.StatusCode)
	}
	return nil
}

// GatewayURL builds the public read URL for a content id.
func (c *Client) GatewayURL(cid string) string {
	return fmt.Sprintf("https://%s/ipfs/%s?api-key=%s", c.gatewayHost, StripScheme(cid), c.apiKey)
}

// StripScheme removes the ipfs:// prefix if present.
func StripScheme(cid string) string {
	return strings.TrimPrefix(cid, URIScheme)
}
