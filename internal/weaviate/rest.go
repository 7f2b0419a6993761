package weaviate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Compile-time check: RESTClient implements Client.
var _ Client = (*RESTClient)(nil)

const apiPrefix = "/v1"

// Config holds connection parameters for the backend.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
	Retries  int
}

// RESTClient talks to the backend over its REST and GraphQL endpoints.
type RESTClient struct {
	base    string
	auth    bool
	user    string
	pass    string
	retries int
	httpc   *http.Client
}

// NewRESTClient builds a client from cfg. Timeout bounds every round trip;
// Retries is the number of additional attempts on transport failure.
func NewRESTClient(cfg Config) (*RESTClient, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Port <= 0 {
		return nil, fmt.Errorf("port is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &RESTClient{
		base:    fmt.Sprintf("http://%s:%d%s", cfg.Host, cfg.Port, apiPrefix),
		auth:    cfg.Username != "" || cfg.Password != "",
		user:    cfg.Username,
		pass:    cfg.Password,
		retries: cfg.Retries,
		httpc:   &http.Client{Timeout: timeout},
	}, nil
}

// Ready checks backend connectivity.
func (c *RESTClient) Ready(ctx context.Context) error {
	status, _, err := c.do(ctx, http.MethodGet, "/.well-known/ready", nil)
	if err != nil {
		return &Error{Op: OpReady, Err: err}
	}
	if status != http.StatusOK {
		return &Error{Op: OpReady, Status: status, Err: fmt.Errorf("backend not ready")}
	}
	return nil
}

// SchemaGet fetches the full remote schema.
func (c *RESTClient) SchemaGet(ctx context.Context) (Schema, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/schema", nil)
	if err != nil {
		return Schema{}, &Error{Op: OpSchema, Err: err}
	}
	if status != http.StatusOK {
		return Schema{}, schemaStatusErr(status, body)
	}

	var s Schema
	if err := json.Unmarshal(body, &s); err != nil {
		return Schema{}, &Error{Op: OpSchema, Err: fmt.Errorf("decode schema: %w", err)}
	}
	return s, nil
}

// SchemaContains reports whether every class of def already exists remotely
// with at least the listed properties. Comparison is client-side against the
// fetched schema.
func (c *RESTClient) SchemaContains(ctx context.Context, def Schema) (bool, error) {
	remote, err := c.SchemaGet(ctx)
	if err != nil {
		return false, err
	}

	byName := make(map[string]Class, len(remote.Classes))
	for _, cls := range remote.Classes {
		byName[cls.Class] = cls
	}

	for _, want := range def.Classes {
		have, ok := byName[want.Class]
		if !ok {
			return false, nil
		}
		props := make(map[string]struct{}, len(have.Properties))
		for _, p := range have.Properties {
			props[p.Name] = struct{}{}
		}
		for _, p := range want.Properties {
			if _, ok := props[p.Name]; !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

// SchemaCreate creates the classes of def.
func (c *RESTClient) SchemaCreate(ctx context.Context, def Schema) error {
	for _, cls := range def.Classes {
		status, body, err := c.do(ctx, http.MethodPost, "/schema", cls)
		if err != nil {
			return &Error{Op: OpSchema, Err: err}
		}
		if status != http.StatusOK {
			return schemaStatusErr(status, body)
		}
	}
	return nil
}

// AddProperty appends a property definition to an existing class.
func (c *RESTClient) AddProperty(ctx context.Context, class string, prop Property) error {
	path := "/schema/" + url.PathEscape(class) + "/properties"
	status, body, err := c.do(ctx, http.MethodPost, path, prop)
	if err != nil {
		return &Error{Op: OpSchema, Err: err}
	}
	if status != http.StatusOK {
		return schemaStatusErr(status, body)
	}
	return nil
}

// DeleteClass drops a class and every object in it.
func (c *RESTClient) DeleteClass(ctx context.Context, class string) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/schema/"+url.PathEscape(class), nil)
	if err != nil {
		return &Error{Op: OpSchema, Err: err}
	}
	if status != http.StatusOK {
		return schemaStatusErr(status, body)
	}
	return nil
}

// ObjectByID fetches one object. Missing objects yield ErrNotFound.
func (c *RESTClient) ObjectByID(ctx context.Context, id string, withVector bool) (*Object, error) {
	path := "/objects/" + url.PathEscape(id)
	if withVector {
		path += "?include=vector"
	}
	status, body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, &Error{Op: OpObject, Err: err}
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, &Error{Op: OpObject, Status: status, Err: ErrNotFound}
	default:
		return nil, &Error{Op: OpObject, Status: status, Err: bodyErr(body)}
	}

	var obj Object
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, &Error{Op: OpObject, Err: fmt.Errorf("decode object: %w", err)}
	}
	return &obj, nil
}

// UpdateObject merges partial properties into an object and, when vector is
// non-nil, replaces its vector.
func (c *RESTClient) UpdateObject(ctx context.Context, class, id string, properties map[string]any, vector []float32) error {
	payload := map[string]any{
		"class":      class,
		"id":         id,
		"properties": properties,
	}
	if vector != nil {
		payload["vector"] = vector
	}

	status, body, err := c.do(ctx, http.MethodPatch, "/objects/"+url.PathEscape(id), payload)
	if err != nil {
		return &Error{Op: OpObject, Err: err}
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return &Error{Op: OpObject, Status: status, Err: ErrNotFound}
	default:
		return &Error{Op: OpObject, Status: status, Err: bodyErr(body)}
	}
}

// DeleteObject removes one object.
func (c *RESTClient) DeleteObject(ctx context.Context, id string) error {
	status, body, err := c.do(ctx, http.MethodDelete, "/objects/"+url.PathEscape(id), nil)
	if err != nil {
		return &Error{Op: OpObject, Err: err}
	}
	switch status {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return &Error{Op: OpObject, Status: status, Err: ErrNotFound}
	default:
		return &Error{Op: OpObject, Status: status, Err: bodyErr(body)}
	}
}

// BatchCreate writes a batch of objects and returns one result per object.
func (c *RESTClient) BatchCreate(ctx context.Context, objects []BatchObject) ([]BatchResult, error) {
	payload := map[string]any{"objects": objects}
	status, body, err := c.do(ctx, http.MethodPost, "/batch/objects", payload)
	if err != nil {
		return nil, &Error{Op: OpBatch, Err: err}
	}
	if status != http.StatusOK {
		return nil, &Error{Op: OpBatch, Status: status, Err: bodyErr(body)}
	}

	var raw []struct {
		ID     string `json:"id"`
		Result struct {
			Errors *struct {
				Error []struct {
					Message string `json:"message"`
				} `json:"error"`
			} `json:"errors"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &Error{Op: OpBatch, Err: fmt.Errorf("decode batch result: %w", err)}
	}

	results := make([]BatchResult, len(raw))
	for i, r := range raw {
		results[i].ID = r.ID
		if r.Result.Errors != nil {
			for _, e := range r.Result.Errors.Error {
				results[i].Errors = append(results[i].Errors, e.Message)
			}
		}
	}
	return results, nil
}

// AggregateCount counts the objects of a class matching where.
func (c *RESTClient) AggregateCount(ctx context.Context, class string, where *WhereFilter) (int, error) {
	query, err := buildAggregateCount(class, where)
	if err != nil {
		return 0, &Error{Op: OpQuery, Err: err}
	}
	body, err := c.graphql(ctx, query)
	if err != nil {
		return 0, err
	}
	return decodeAggregateCount(body, class)
}

// Get runs a filtered scan returning query-shaped raw maps.
func (c *RESTClient) Get(ctx context.Context, class string, properties []string, where *WhereFilter, limit, offset int) ([]map[string]any, error) {
	query, err := buildGet(class, properties, where, nil, limit, offset)
	if err != nil {
		return nil, &Error{Op: OpQuery, Err: err}
	}
	return c.Raw(ctx, class, query)
}

// GetNearVector runs a nearest-neighbor query around vector.
func (c *RESTClient) GetNearVector(ctx context.Context, class string, properties []string, vector []float32, where *WhereFilter, limit int) ([]map[string]any, error) {
	query, err := buildGet(class, properties, where, vector, limit, 0)
	if err != nil {
		return nil, &Error{Op: OpQuery, Err: err}
	}
	return c.Raw(ctx, class, query)
}

// Raw executes a caller-built native query verbatim.
func (c *RESTClient) Raw(ctx context.Context, class, query string) ([]map[string]any, error) {
	body, err := c.graphql(ctx, query)
	if err != nil {
		return nil, err
	}
	return decodeGet(body, class)
}

func (c *RESTClient) graphql(ctx context.Context, query string) ([]byte, error) {
	payload := map[string]string{"query": query}
	status, body, err := c.do(ctx, http.MethodPost, "/graphql", payload)
	if err != nil {
		return nil, &Error{Op: OpQuery, Err: err}
	}
	if status != http.StatusOK {
		return nil, &Error{Op: OpQuery, Status: status, Err: bodyErr(body)}
	}
	return body, nil
}

// do runs one HTTP exchange against the backend, retrying transport-level
// failures. Non-2xx statuses are returned to the caller, not retried.
func (c *RESTClient) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	var reqBody []byte
	if payload != nil {
		var err error
		reqBody, err = json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("encode request: %w", err)
		}
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
			}
		}

		status, body, err := c.roundTrip(ctx, method, path, reqBody)
		if err == nil {
			return status, body, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return 0, nil, ctx.Err()
		}
	}
	return 0, nil, fmt.Errorf("after %d attempts: %w", c.retries+1, lastErr)
}

func (c *RESTClient) roundTrip(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth {
		req.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func schemaStatusErr(status int, body []byte) error {
	return &Error{Op: OpSchema, Status: status, Err: bodyErr(body)}
}

// bodyErr extracts the backend's error messages from an error response body,
// falling back to the raw body.
func bodyErr(body []byte) error {
	var parsed struct {
		Error []struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && len(parsed.Error) > 0 {
		msgs := make([]string, len(parsed.Error))
		for i, e := range parsed.Error {
			msgs[i] = e.Message
		}
		return fmt.Errorf("%s", strings.Join(msgs, "; "))
	}
	if len(body) > 0 {
		return fmt.Errorf("%s", body)
	}
	return fmt.Errorf("empty error response")
}
