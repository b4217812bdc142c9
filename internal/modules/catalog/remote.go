package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studiofinder/internal/discovery"
)

const (
	remotePageSize = 100
	remoteMaxPages = 50
)

// RemoteClient reads studios from another instance's GET /studios endpoint.
// It satisfies discovery.Catalog.
type RemoteClient struct {
	baseURL string
	http    *http.Client
}

func NewRemoteClient(baseURL string, timeout time.Duration) *RemoteClient {
	return &RemoteClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

type listEnvelope struct {
	Success bool `json:"success"`
	Data    struct {
		Studios    []*discovery.Studio `json:"studios"`
		Pagination Pagination          `json:"pagination"`
	} `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// FetchStudios walks every page for q and returns the concatenated list.
func (c *RemoteClient) FetchStudios(ctx context.Context, q discovery.QueryParams) ([]*discovery.Studio, error) {
	var all []*discovery.Studio
	for page := 1; page <= remoteMaxPages; page++ {
		env, err := c.fetchPage(ctx, q, page)
		if err != nil {
			return nil, err
		}
		all = append(all, env.Data.Studios...)
		if page >= env.Data.Pagination.TotalPages || len(env.Data.Studios) == 0 {
			break
		}
	}
	for _, s := range all {
		if s == nil || s.ID == "" {
			return nil, &discovery.FetchError{Kind: discovery.FetchBadResponse, Err: errors.New("studio without id")}
		}
	}
	return all, nil
}

func (c *RemoteClient) fetchPage(ctx context.Context, q discovery.QueryParams, page int) (*listEnvelope, error) {
	values := q.Values()
	values.Set("page", strconv.Itoa(page))
	values.Set("limit", strconv.Itoa(remotePageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/studios?"+values.Encode(), nil)
	if err != nil {
		return nil, &discovery.FetchError{Kind: discovery.FetchBadResponse, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &discovery.FetchError{
			Kind: discovery.FetchUnavailable,
			Err:  fmt.Errorf("%w: status %d", ErrCatalogUnavailable, resp.StatusCode),
		}
	}

	var env listEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &discovery.FetchError{Kind: discovery.FetchBadResponse, Err: fmt.Errorf("decode studios: %w", err)}
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := fmt.Sprintf("status %d", resp.StatusCode)
		if env.Error != nil {
			msg = env.Error.Code + ": " + env.Error.Message
		}
		return nil, &discovery.FetchError{Kind: discovery.FetchBadResponse, Err: fmt.Errorf("catalog rejected request: %s", msg)}
	}
	return &env, nil
}

func classifyTransportError(err error) *discovery.FetchError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return &discovery.FetchError{Kind: discovery.FetchTimeout, Err: err}
	}
	return discovery.ClassifyFetchError(err)
}
