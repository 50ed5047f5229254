// Package apiclient is the runtime used by clients generated with apigen.
package apiclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// DefaultService is the SigV4 signing name of API Gateway
const DefaultService = "execute-api"

// ErrEmptyResponse is returned when the API answers with an empty JSON
// object, which the gateway uses to signal a failed integration request.
var ErrEmptyResponse = errors.New("apiclient: empty response")

// HTTPError is returned for responses with a status code of 400 or above
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("apiclient: request failed with status %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
}

// Config configures a Client
type Config struct {
	// Domain is the base URL every request path is appended to
	Domain string
	// Region used for signing. Falls back to the shared AWS configuration.
	Region string
	// Service is the signing name, DefaultService when empty
	Service string
	// Credentials overrides the default AWS credential chain
	Credentials aws.CredentialsProvider
	// HTTPClient defaults to http.DefaultClient
	HTTPClient *http.Client
	// Headers are added to every request
	Headers map[string]string
}

// Client issues SigV4 signed JSON requests against one API domain
type Client struct {
	domain      string
	region      string
	service     string
	credentials aws.CredentialsProvider
	httpClient  *http.Client
	headers     map[string]string
	signer      *v4.Signer
	now         func() time.Time
}

// New creates a Client. Missing credentials or region are taken from the
// default AWS configuration chain.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.Domain) == "" {
		return nil, fmt.Errorf("apiclient: domain is required")
	}
	if _, err := url.Parse(cfg.Domain); err != nil {
		return nil, fmt.Errorf("apiclient: invalid domain %q: %w", cfg.Domain, err)
	}

	region := cfg.Region
	creds := cfg.Credentials
	if creds == nil || region == "" {
		var opts []func(*awsconfig.LoadOptions) error
		if region != "" {
			opts = append(opts, awsconfig.WithRegion(region))
		}
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("apiclient: failed to load AWS configuration: %w", err)
		}
		if creds == nil {
			creds = awsCfg.Credentials
		}
		if region == "" {
			region = awsCfg.Region
		}
	}

	service := cfg.Service
	if service == "" {
		service = DefaultService
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		domain:      strings.TrimRight(cfg.Domain, "/"),
		region:      region,
		service:     service,
		credentials: creds,
		httpClient:  httpClient,
		headers:     cfg.Headers,
		signer:      v4.NewSigner(),
		now:         time.Now,
	}, nil
}

// Request describes one API call. Query is only sent for GET requests and
// Body only for the mutating verbs.
type Request struct {
	Method string
	Path   string
	Query  any
	Body   any
}

// Do signs and sends req, decoding the JSON response into out when out is
// not nil.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	target := c.domain + req.Path

	var payload []byte
	if req.Method == http.MethodGet {
		values, err := EncodeQuery(req.Query)
		if err != nil {
			return err
		}
		if encoded := values.Encode(); encoded != "" {
			target += "?" + encoded
		}
	} else if req.Body != nil {
		var err error
		payload, err = json.Marshal(req.Body)
		if err != nil {
			return fmt.Errorf("apiclient: failed to encode body: %w", err)
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("apiclient: failed to build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, value := range c.headers {
		httpReq.Header.Set(key, value)
	}

	if err := c.sign(ctx, httpReq, payload); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("apiclient: %s %s: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("apiclient: failed to read response: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return &HTTPError{StatusCode: resp.StatusCode, Body: body}
	}
	if isEmptyObject(body) {
		return ErrEmptyResponse
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("apiclient: failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) sign(ctx context.Context, req *http.Request, payload []byte) error {
	if c.credentials == nil {
		return nil
	}
	creds, err := c.credentials.Retrieve(ctx)
	if err != nil {
		return fmt.Errorf("apiclient: failed to retrieve credentials: %w", err)
	}
	sum := sha256.Sum256(payload)
	if err := c.signer.SignHTTP(ctx, creds, req, hex.EncodeToString(sum[:]), c.service, c.region, c.now()); err != nil {
		return fmt.Errorf("apiclient: failed to sign request: %w", err)
	}
	return nil
}

func isEmptyObject(body []byte) bool {
	var object map[string]json.RawMessage
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return false
	}
	return len(object) == 0
}
