package hyperdrive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aimoda/hyperdrive-dsql-refresher/interfaces"
)

// DefaultBaseURL is the public Cloudflare API endpoint.
const DefaultBaseURL = "https://api.cloudflare.com/client/v4"

// defaultPerPage is the page size used when listing configs.
const defaultPerPage = 50

// Client talks to the Cloudflare Hyperdrive API for a single account. It
// implements interfaces.HyperdriveService.
type Client struct {
	// BaseURL is the API root; defaults to DefaultBaseURL when empty.
	BaseURL string

	// AccountID is the Cloudflare account the configs live in.
	AccountID string

	// APIToken is sent as a bearer token on every request.
	APIToken string

	// HTTPClient is used for all requests; http.DefaultClient when nil.
	HTTPClient *http.Client
}

// Cloudflare v4 response envelope.
type envelope struct {
	Success    bool            `json:"success"`
	Errors     []apiError      `json:"errors"`
	Result     json.RawMessage `json:"result"`
	ResultInfo *resultInfo     `json:"result_info"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type resultInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Count      int `json:"count"`
	TotalCount int `json:"total_count"`
}

type originPayload struct {
	Scheme   string `json:"scheme"`
	Database string `json:"database"`
	User     string `json:"user"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Password string `json:"password,omitempty"`
}

type configPayload struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Origin originPayload `json:"origin"`
}

func (c configPayload) remoteConfig() interfaces.RemoteConfig {
	return interfaces.RemoteConfig{
		ID:   c.ID,
		Name: c.Name,
		Origin: interfaces.Origin{
			Scheme:   c.Origin.Scheme,
			Database: c.Origin.Database,
			User:     c.Origin.User,
			Host:     c.Origin.Host,
			Port:     c.Origin.Port,
		},
	}
}

func payloadOrigin(origin interfaces.Origin) originPayload {
	return originPayload{
		Scheme:   origin.Scheme,
		Database: origin.Database,
		User:     origin.User,
		Host:     origin.Host,
		Port:     origin.Port,
		Password: origin.Password,
	}
}

// List enumerates every Hyperdrive config in the account, following
// pagination until the reported total is consumed.
func (c *Client) List(ctx context.Context) ([]interfaces.RemoteConfig, error) {
	var configs []interfaces.RemoteConfig

	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("per_page", strconv.Itoa(defaultPerPage))

		env, err := c.do(ctx, http.MethodGet, c.configsPath()+"?"+query.Encode(), nil)
		if err != nil {
			return nil, fmt.Errorf("listing hyperdrive configs (page %d): %w", page, err)
		}

		var pageConfigs []configPayload
		if err := json.Unmarshal(env.Result, &pageConfigs); err != nil {
			return nil, fmt.Errorf("could not parse hyperdrive config listing: %w", err)
		}
		for _, cfg := range pageConfigs {
			configs = append(configs, cfg.remoteConfig())
		}

		if env.ResultInfo == nil || len(configs) >= env.ResultInfo.TotalCount || len(pageConfigs) == 0 {
			return configs, nil
		}
	}
}

// Create adds a new config under name and returns it with the id Cloudflare
// assigned.
func (c *Client) Create(ctx context.Context, name string, origin interfaces.Origin) (interfaces.RemoteConfig, error) {
	body := configPayload{Name: name, Origin: payloadOrigin(origin)}
	env, err := c.do(ctx, http.MethodPost, c.configsPath(), body)
	if err != nil {
		return interfaces.RemoteConfig{}, fmt.Errorf("creating hyperdrive config %s: %w", name, err)
	}
	return parseConfigResult(env.Result)
}

// Edit replaces the origin of the config with the given id.
func (c *Client) Edit(ctx context.Context, id string, origin interfaces.Origin) (interfaces.RemoteConfig, error) {
	body := struct {
		Origin originPayload `json:"origin"`
	}{Origin: payloadOrigin(origin)}

	env, err := c.do(ctx, http.MethodPatch, c.configsPath()+"/"+id, body)
	if err != nil {
		return interfaces.RemoteConfig{}, fmt.Errorf("editing hyperdrive config %s: %w", id, err)
	}
	return parseConfigResult(env.Result)
}

func parseConfigResult(result json.RawMessage) (interfaces.RemoteConfig, error) {
	var cfg configPayload
	if err := json.Unmarshal(result, &cfg); err != nil {
		return interfaces.RemoteConfig{}, fmt.Errorf("could not parse hyperdrive config response: %w", err)
	}
	return cfg.remoteConfig(), nil
}

func (c *Client) configsPath() string {
	return fmt.Sprintf("/accounts/%s/hyperdrive/configs", c.AccountID)
}

func (c *Client) do(ctx context.Context, method, path string, body any) (*envelope, error) {
	baseURL := c.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("could not encode request body: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not reach hyperdrive API: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("hyperdrive API returned unparseable response (status %d): %w", resp.StatusCode, err)
	}

	if !env.Success || resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", interfaces.ErrConfigNotFound, apiErrorString(env.Errors))
		}
		return nil, fmt.Errorf("hyperdrive API returned error %d: %s", resp.StatusCode, apiErrorString(env.Errors))
	}

	return &env, nil
}

func apiErrorString(errs []apiError) string {
	if len(errs) == 0 {
		return "no error detail"
	}
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%d: %s", e.Code, e.Message)
	}
	return msg
}
