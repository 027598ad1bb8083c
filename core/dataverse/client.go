package dataverse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// Client defines the Web API operations used by the sync.
type Client interface {
	// RetrieveSolutions returns every solution whose unique name equals uniqueName.
	RetrieveSolutions(ctx context.Context, uniqueName string) ([]Solution, error)
	// RetrieveSolutionWebResources returns the web resources linked to a solution.
	// The result is a single response page.
	RetrieveSolutionWebResources(ctx context.Context, solutionID string) ([]WebResource, error)
	// CreateWebResource creates a web resource and adds it to the named solution
	// in one request. It returns the new record id.
	CreateWebResource(ctx context.Context, resource WebResource, solutionUniqueName string) (string, error)
	// UpdateWebResourceContent replaces the content column of an existing web resource.
	UpdateWebResourceContent(ctx context.Context, id, content string) error
	// PublishXML runs the PublishXml action with the given parameter.
	PublishXML(ctx context.Context, parameterXML string) error
}

const maxErrorBody = 1 << 20

var entityIDPattern = regexp.MustCompile(`\(([0-9a-fA-F-]{36})\)\s*$`)

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient opens an authenticated Web API session for the connection string.
func NewClient(ctx context.Context, cs *ConnectionString, cfg Config) (Client, error) {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 60
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		ResponseHeaderTimeout: timeoutDuration,
	}
	base := &http.Client{Transport: transport}

	tokens, err := NewTokenSource(ctx, cs, base)
	if err != nil {
		return nil, err
	}

	authed := &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, tokens),
			Base:   transport,
		},
	}
	return NewClientWithHTTP(cs.URL, authed, cfg), nil
}

// NewClientWithHTTP builds a client on top of an already authenticated HTTP client.
func NewClientWithHTTP(serviceURL string, hc *http.Client, cfg Config) Client {
	version := cfg.APIVersion
	if version == "" {
		version = "9.2"
	}
	c := &httpClient{
		baseURL: strings.TrimRight(serviceURL, "/") + "/api/data/v" + version + "/",
		http:    hc,
	}
	if cfg.RequestsPerSecond > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return c
}

func (c *httpClient) RetrieveSolutions(ctx context.Context, uniqueName string) ([]Solution, error) {
	query := url.Values{}
	query.Set("$select", "solutionid,version,uniquename,friendlyname,description")
	query.Set("$filter", fmt.Sprintf("uniquename eq '%s'", escapeLiteral(uniqueName)))

	var out collection[Solution]
	if _, err := c.do(ctx, http.MethodGet, "solutions", query, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to query solution %s: %w", uniqueName, err)
	}
	return out.Value, nil
}

func (c *httpClient) RetrieveSolutionWebResources(ctx context.Context, solutionID string) ([]WebResource, error) {
	fetchXML, err := solutionWebResourcesFetch(solutionID)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("fetchXml", fetchXML)

	var out collection[WebResource]
	if _, err := c.do(ctx, http.MethodGet, "webresourceset", query, nil, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to query web resources of solution %s: %w", solutionID, err)
	}
	return out.Value, nil
}

func (c *httpClient) CreateWebResource(ctx context.Context, resource WebResource, solutionUniqueName string) (string, error) {
	body := map[string]any{
		"name":        resource.Name,
		"displayname": resource.DisplayName,
		"content":     resource.Content,
	}
	if resource.WebResourceType != 0 {
		body["webresourcetype"] = resource.WebResourceType
	}
	if resource.Description != "" {
		body["description"] = resource.Description
	}

	headers := map[string]string{"MSCRM.SolutionUniqueName": solutionUniqueName}
	resp, err := c.do(ctx, http.MethodPost, "webresourceset", nil, body, headers, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create web resource %s: %w", resource.Name, err)
	}

	id, err := parseEntityID(resp.Header.Get("OData-EntityId"))
	if err != nil {
		return "", fmt.Errorf("failed to read id of created web resource %s: %w", resource.Name, err)
	}
	return id, nil
}

func (c *httpClient) UpdateWebResourceContent(ctx context.Context, id, content string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid web resource id %q: %w", id, err)
	}
	body := map[string]any{"content": content}
	// If-Match keeps PATCH from turning into an upsert.
	headers := map[string]string{"If-Match": "*"}
	if _, err := c.do(ctx, http.MethodPatch, "webresourceset("+id+")", nil, body, headers, nil); err != nil {
		return fmt.Errorf("failed to update web resource %s: %w", id, err)
	}
	return nil
}

func (c *httpClient) PublishXML(ctx context.Context, parameterXML string) error {
	body := map[string]any{"ParameterXml": parameterXML}
	if _, err := c.do(ctx, http.MethodPost, "PublishXml", nil, body, nil, nil); err != nil {
		return fmt.Errorf("failed to publish: %w", err)
	}
	return nil
}

// do sends one request and decodes a JSON response into out when out is non-nil.
func (c *httpClient) do(ctx context.Context, method, resource string, query url.Values, body any, headers map[string]string, out any) (*http.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	target := c.baseURL + resource
	if len(query) > 0 {
		// OData expects %20 rather than '+' for spaces.
		target += "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("OData-MaxVersion", "4.0")
	req.Header.Set("OData-Version", "4.0")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return resp, decodeAPIError(resp.StatusCode, data)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp, nil
}

// parseEntityID extracts the GUID from an OData-EntityId header value such as
// https://org.crm.dynamics.com/api/data/v9.2/webresourceset(00000000-0000-0000-0000-000000000000).
func parseEntityID(header string) (string, error) {
	m := entityIDPattern.FindStringSubmatch(header)
	if m == nil {
		return "", fmt.Errorf("unexpected OData-EntityId %q", header)
	}
	id, err := uuid.Parse(m[1])
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// escapeLiteral doubles single quotes for OData string literals.
func escapeLiteral(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
