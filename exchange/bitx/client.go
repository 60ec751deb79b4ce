package bitx

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

	"github.com/google/uuid"
	"github.com/lukehollenback/gobitx/constants"
	"github.com/lukehollenback/gobitx/exchange"
	"github.com/lukehollenback/gobitx/structs/workerpool"
	"go.uber.org/zap"
)

var _ exchange.Client = (*Client)(nil)

//
// Client implements the exchange.Client interface for the BitX API. Every request is executed by
// a fixed-size worker pool owned by the client, and the caller blocks until the request completes
// or the configured timeout elapses. A Client must be closed when it is no longer needed.
//
type Client struct {
	key    string
	secret string

	hostname string
	port     int
	pair     string
	timeout  time.Duration
	headers  http.Header

	httpClient *http.Client
	ownsHTTP   bool
	pool       *workerpool.WorkerPool
	logger     *zap.Logger
}

//
// result carries the outcome of an HTTP exchange out of the worker that executed it.
//
type result struct {
	url        string
	statusCode int
	body       []byte
	err        error
}

//
// New builds a client for the provided credentials and starts its worker pool. Nil options mean
// all defaults. Credentials may be empty when only unauthenticated calls will be made.
//
func New(key string, secret string, opts *Options) (*Client, error) {
	resolved := opts.withDefaults()

	httpClient, err := resolved.httpClient()
	if err != nil {
		return nil, err
	}

	logger := resolved.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	logger = logger.Named("bitx")

	o := &Client{
		key:        key,
		secret:     secret,
		hostname:   resolved.Hostname,
		port:       resolved.Port,
		pair:       resolved.Pair,
		timeout:    resolved.Timeout,
		httpClient: httpClient,
		ownsHTTP:   resolved.HTTPClient == nil,
		pool:       workerpool.New(resolved.Workers, logger),
		logger:     logger,
		headers: http.Header{
			"Accept":         []string{"application/json"},
			"Accept-Charset": []string{"utf-8"},
			"User-Agent":     []string{constants.UserAgent},
		},
	}

	//
	// Fire up the worker pool and wait for it to be ready.
	//
	chStarted, err := o.pool.Start()
	if err != nil {
		return nil, err
	}

	<-chStarted

	return o, nil
}

func (o *Client) Hostname() string {
	return o.hostname
}

func (o *Client) Port() int {
	return o.port
}

func (o *Client) Pair() string {
	return o.pair
}

func (o *Client) Timeout() time.Duration {
	return o.timeout
}

//
// Credentials returns the key and secret the client authenticates with.
//
func (o *Client) Credentials() (string, string) {
	return o.key, o.secret
}

//
// DefaultAuth returns Authenticated if the client was given a full credential pair, and
// Unauthenticated otherwise.
//
func (o *Client) DefaultAuth() exchange.Auth {
	if o.key == "" || o.secret == "" {
		return exchange.Unauthenticated
	}

	return exchange.Authenticated
}

//
// URL builds the full URL of the provided API call. The port is only included when it is not the
// default HTTPS port.
//
func (o *Client) URL(call string) string {
	base := o.hostname

	if o.port != DefaultPort {
		base += ":" + strconv.Itoa(o.port)
	}

	return "https://" + base + APIPath + call
}

//
// Close shuts down the client's worker pool, waiting for any requests that are still queued or in
// flight to finish first.
//
func (o *Client) Close() error {
	o.logger.Info("Asking the worker pool to shut down.")

	chStopped, err := o.pool.Stop()
	if err != nil {
		return err
	}

	<-chStopped

	if o.ownsHTTP {
		o.httpClient.CloseIdleConnections()
	}

	o.logger.Info("The worker pool has shut down.")

	return nil
}

//
// Get makes a GET request against the provided API call.
//
func (o *Client) Get(call string, params url.Values, auth exchange.Auth) (*exchange.Response, error) {
	return o.Request(http.MethodGet, call, params, nil, auth)
}

//
// Post makes a POST request against the provided API call with a form-encoded body.
//
func (o *Client) Post(call string, form url.Values, auth exchange.Auth) (*exchange.Response, error) {
	return o.Request(http.MethodPost, call, nil, form, auth)
}

//
// Request makes the specified request to the BitX API through the worker pool and returns the
// decoded response. Generally, use the convenience methods instead.
//
// A *exchange.TimeoutError is returned when the request does not complete within the client's
// timeout (time spent queued for a worker counts). An *APIError is returned when the exchange
// answers with a non-200 status, with an "error" field, or with something that is not JSON.
//
func (o *Client) Request(
	method string,
	call string,
	params url.Values,
	form url.Values,
	auth exchange.Auth,
) (*exchange.Response, error) {
	//
	// Build the request URL.
	//
	reqURL := o.URL(call)

	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	//
	// Build the request itself. Its context bounds the whole exchange, so that an abandoned request
	// is also aborted in the worker.
	//
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	req, err := o.newRequest(ctx, method, reqURL, form, auth)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("method", method),
		zap.String("url", reqURL),
		zap.Stringer("auth", auth),
	)

	logger.Debug("Dispatching request.")

	//
	// Hand the request off to the worker pool and wait for it to finish or time out.
	//
	start := time.Now()
	chResult := make(chan *result, 1)

	if err := o.pool.Submit(func() { chResult <- o.do(req) }); err != nil {
		return nil, fmt.Errorf("failed to submit request %s: %w", reqURL, err)
	}

	var res *result

	select {
	case res = <-chResult:
	case <-ctx.Done():
	}

	if res == nil || (res.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded)) {
		logger.Debug("Request timed out.", zap.Duration("timeout", o.timeout))

		return nil, exchange.NewTimeoutError(reqURL, o.timeout)
	}

	if res.err != nil {
		logger.Debug("Request failed.", zap.Error(res.err))

		return nil, fmt.Errorf("request %s failed: %w", reqURL, res.err)
	}

	logger.Debug(
		"Request completed.",
		zap.Int("status", res.statusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	return o.parse(res)
}

//
// newRequest builds an HTTP request carrying the client's standard headers and, if asked for, its
// credentials.
//
func (o *Client) newRequest(
	ctx context.Context,
	method string,
	reqURL string,
	form url.Values,
	auth exchange.Auth,
) (*http.Request, error) {
	var body io.Reader

	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request %s: %w", reqURL, err)
	}

	for k, values := range o.headers {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	if auth == exchange.Authenticated {
		req.SetBasicAuth(o.key, o.secret)
	}

	return req, nil
}

//
// do executes the provided request and reads its response. It is run by a pool worker.
//
func (o *Client) do(req *http.Request) *result {
	//
	// Skip requests whose caller has already given up on them while they were queued.
	//
	if err := req.Context().Err(); err != nil {
		return &result{err: err}
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return &result{err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &result{err: fmt.Errorf("failed to read response: %w", err)}
	}

	return &result{
		url:        resp.Request.URL.String(),
		statusCode: resp.StatusCode,
		body:       body,
	}
}

//
// parse decodes the body of a completed request and checks it for API errors.
//
func (o *Client) parse(res *result) (*exchange.Response, error) {
	var payload interface{}

	if err := json.Unmarshal(res.body, &payload); err != nil {
		payload = map[string]interface{}{"error": NoJSONContent}
	}

	if res.statusCode != http.StatusOK || hasError(payload) {
		apiErr := NewAPIError(res.url, res.statusCode, res.body)

		if m, ok := payload.(map[string]interface{}); ok && apiErr.Message == "" {
			apiErr.Message, _ = m["error"].(string)
		}

		return nil, apiErr
	}

	return exchange.NewResponse(res.url, res.statusCode, payload), nil
}

//
// hasError returns whether or not the payload is a JSON object with an "error" field.
//
func hasError(payload interface{}) bool {
	m, ok := payload.(map[string]interface{})
	if !ok {
		return false
	}

	_, ok = m["error"]

	return ok
}
