package bitx

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lukehollenback/gobitx/constants"
	"github.com/lukehollenback/gobitx/exchange"
	"github.com/lukehollenback/gobitx/structs/workerpool"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testKey    = "mykey"
	testSecret = "mysecret"
)

//
// newTestServer starts a TLS server and builds a client pointed at it. Both are torn down when the
// test completes.
//
func newTestServer(t *testing.T, handler http.HandlerFunc, opts *Options) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("Failed to parse test server URL. (Error: %s)", err)
	}

	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("Failed to parse test server port. (Error: %s)", err)
	}

	if opts == nil {
		opts = &Options{}
	}

	opts.Hostname = u.Hostname()
	opts.Port = port

	if opts.CA == "" && opts.HTTPClient == nil {
		opts.HTTPClient = server.Client()
	}

	if opts.Logger == nil {
		opts.Logger = zaptest.NewLogger(t)
	}

	client, err := New(testKey, testSecret, opts)
	if err != nil {
		t.Fatalf("Failed to build client. (Error: %s)", err)
	}

	t.Cleanup(func() { _ = client.Close() })

	return client, server
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func basicAuthHeader(key string, secret string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(key+":"+secret))
}

func TestDefaultOptions(t *testing.T) {
	client, err := New("", "", nil)
	if err != nil {
		t.Fatalf("Failed to build client. (Error: %s)", err)
	}
	defer client.Close()

	if client.Hostname() != "api.mybitx.com" {
		t.Errorf("Expected default hostname api.mybitx.com but got %s.", client.Hostname())
	}

	if client.Port() != 443 {
		t.Errorf("Expected default port 443 but got %d.", client.Port())
	}

	if client.Pair() != "XBTZAR" {
		t.Errorf("Expected default pair XBTZAR but got %s.", client.Pair())
	}

	if client.Timeout() != 30*time.Second {
		t.Errorf("Expected default timeout of 30s but got %s.", client.Timeout())
	}

	if client.pool.Size() != constants.DefaultWorkers {
		t.Errorf("Expected %d workers but got %d.", constants.DefaultWorkers, client.pool.Size())
	}

	if client.DefaultAuth() != exchange.Unauthenticated {
		t.Errorf("A client without credentials should default to unauthenticated calls.")
	}
}

func TestCustomOptionsAndCredentials(t *testing.T) {
	key := "cnz2yjswbv3jd"
	secret := "0hydMZDb9HRR3Qq-iqALwZtXLkbLR4fWxtDZvkB9h4I"

	client, err := New(key, secret, &Options{
		Hostname: "localhost",
		Port:     8000,
		Pair:     "XBTUSD",
		Timeout:  5 * time.Second,
		Workers:  2,
	})
	if err != nil {
		t.Fatalf("Failed to build client. (Error: %s)", err)
	}
	defer client.Close()

	if client.Hostname() != "localhost" || client.Port() != 8000 || client.Pair() != "XBTUSD" {
		t.Errorf("Options were not applied. (Got: %s:%d %s)", client.Hostname(), client.Port(), client.Pair())
	}

	if client.Timeout() != 5*time.Second {
		t.Errorf("Expected a 5s timeout but got %s.", client.Timeout())
	}

	if k, s := client.Credentials(); k != key || s != secret {
		t.Errorf("Credentials were not kept. (Got: %s, %s)", k, s)
	}

	if client.DefaultAuth() != exchange.Authenticated {
		t.Errorf("A client with credentials should default to authenticated calls.")
	}
}

func TestURL(t *testing.T) {
	cases := []struct {
		hostname string
		port     int
		expected string
	}{
		{"", 0, "https://api.mybitx.com/api/1/test"},
		{"localhost", 0, "https://localhost/api/1/test"},
		{"", 40000, "https://api.mybitx.com:40000/api/1/test"},
		{"localhost", 40000, "https://localhost:40000/api/1/test"},
		{"localhost", 443, "https://localhost/api/1/test"},
		{"localhost", 80, "https://localhost:80/api/1/test"},
	}

	for _, c := range cases {
		client, err := New("", "", &Options{Hostname: c.hostname, Port: c.port})
		if err != nil {
			t.Fatalf("Failed to build client. (Error: %s)", err)
		}

		if actual := client.URL("test"); actual != c.expected {
			t.Errorf("Expected URL %s but got %s.", c.expected, actual)
		}

		_ = client.Close()
	}
}

func TestHeaders(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if v := r.Header.Get("Accept"); v != "application/json" {
			t.Errorf("Expected Accept application/json but got %s.", v)
		}

		if v := r.Header.Get("Accept-Charset"); v != "utf-8" {
			t.Errorf("Expected Accept-Charset utf-8 but got %s.", v)
		}

		if v := r.Header.Get("User-Agent"); v != "gobitx v"+constants.Version {
			t.Errorf("Expected User-Agent gobitx v%s but got %s.", constants.Version, v)
		}

		writeJSON(w, http.StatusOK, `{"success": true}`)
	}, nil)

	resp, err := client.GetTicker(exchange.Authenticated)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if resp.Map()["success"] != true {
		t.Errorf("Expected success to be true, got %v.", resp.Map()["success"])
	}
}

func TestBasicAuth(t *testing.T) {
	var header string

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("Authorization")

		writeJSON(w, http.StatusOK, `{}`)
	}, nil)

	if _, err := client.GetBalance(exchange.Authenticated); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if expected := basicAuthHeader(testKey, testSecret); header != expected {
		t.Errorf("Expected Authorization %s but got %s.", expected, header)
	}

	if _, err := client.GetBalance(exchange.Unauthenticated); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if header != "" {
		t.Errorf("Unauthenticated calls should not send an Authorization header, but sent %s.", header)
	}
}

func TestErrorFieldWithOKStatus(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"error": "Invalid currency pair.", "error_code": "ErrInvalidPair"}`)
	}, nil)

	_, err := client.GetTicker(exchange.Authenticated)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an *APIError, got %T (%v).", err, err)
	}

	if apiErr.Code != http.StatusOK {
		t.Errorf("Expected code 200 but got %d.", apiErr.Code)
	}

	if expected := client.URL("ticker") + "?pair=XBTZAR"; apiErr.URL != expected {
		t.Errorf("Expected URL %s but got %s.", expected, apiErr.URL)
	}

	if apiErr.Message != "Invalid currency pair." || apiErr.ErrorCode != "ErrInvalidPair" {
		t.Errorf("The error envelope was not parsed. (Got: %q, %q)", apiErr.Message, apiErr.ErrorCode)
	}

	var generic exchange.APIError
	if !errors.As(err, &generic) || generic.StatusCode() != http.StatusOK {
		t.Errorf("The error should satisfy exchange.APIError.")
	}

	if errors.Is(err, exchange.ErrTimeout) {
		t.Errorf("An API error should not look like a timeout.")
	}
}

func TestUnauthorized(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("No Authorization header should have been sent.")
		}

		w.WriteHeader(http.StatusUnauthorized)
	}, nil)

	_, err := client.GetOrders(exchange.AnyState, exchange.Unauthenticated)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an *APIError, got %T (%v).", err, err)
	}

	if apiErr.Code != http.StatusUnauthorized {
		t.Errorf("Expected code 401 but got %d.", apiErr.Code)
	}

	if expected := client.URL("listorders") + "?pair=XBTZAR"; apiErr.URL != expected {
		t.Errorf("Expected URL %s but got %s.", expected, apiErr.URL)
	}

	if apiErr.Message != NoJSONContent {
		t.Errorf("An empty body should be reported as %q, got %q.", NoJSONContent, apiErr.Message)
	}
}

func TestServerErrorWithJSONArray(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `[1, 2]`)
	}, nil)

	_, err := client.GetAllTickers(exchange.Unauthenticated)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an *APIError, got %T (%v).", err, err)
	}

	if apiErr.Code != http.StatusInternalServerError || apiErr.Body != `[1, 2]` {
		t.Errorf("Unexpected error contents. (Code: %d, Body: %s)", apiErr.Code, apiErr.Body)
	}
}

func TestNonJSONBody(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>maintenance</html>"))
	}, nil)

	_, err := client.GetAllTickers(exchange.Unauthenticated)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Expected an *APIError, got %T (%v).", err, err)
	}

	if apiErr.Code != http.StatusOK {
		t.Errorf("Expected code 200 but got %d.", apiErr.Code)
	}

	if apiErr.Body != "<html>maintenance</html>" {
		t.Errorf("The raw body should be kept, got %q.", apiErr.Body)
	}

	if apiErr.Message != NoJSONContent {
		t.Errorf("Expected message %q but got %q.", NoJSONContent, apiErr.Message)
	}
}

func TestTimeout(t *testing.T) {
	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, &Options{Timeout: 50 * time.Millisecond})

	start := time.Now()

	_, err := client.GetTicker(exchange.Unauthenticated)

	if !errors.Is(err, exchange.ErrTimeout) {
		t.Fatalf("Expected a timeout error, got %T (%v).", err, err)
	}

	var timeoutErr *exchange.TimeoutError
	if !errors.As(err, &timeoutErr) || timeoutErr.After != 50*time.Millisecond {
		t.Errorf("The timeout error should carry the configured timeout.")
	}

	var apiErr exchange.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("A timeout should not be reported as an API error.")
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("The call should have returned at the timeout, but took %s.", elapsed)
	}
}

func TestQueueTimeCountsTowardTimeout(t *testing.T) {
	timeout := 200 * time.Millisecond
	arrived := make(chan struct{}, 2)

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}

		<-r.Context().Done()
	}, &Options{Workers: 1, Timeout: timeout})

	//
	// Occupy the only worker with a request that never gets an answer.
	//
	chFirst := make(chan error, 1)

	go func() {
		_, err := client.GetTicker(exchange.Unauthenticated)

		chFirst <- err
	}()

	<-arrived

	//
	// The second request has to wait behind the first, and that wait is part of its budget.
	//
	start := time.Now()

	_, err := client.GetAllTickers(exchange.Unauthenticated)

	elapsed := time.Since(start)

	var timeoutErr *exchange.TimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected a timeout error, got %T (%v).", err, err)
	}

	if elapsed > timeout+timeout/2 {
		t.Errorf("The queued request should have timed out after about %s, but took %s.", timeout, elapsed)
	}

	if err := <-chFirst; !errors.Is(err, exchange.ErrTimeout) {
		t.Errorf("Expected the first request to time out too, got %v.", err)
	}
}

func TestExpiredQueuedRequestIsSkipped(t *testing.T) {
	var hits atomic.Int32

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		writeJSON(w, http.StatusOK, `{"pair": "XBTZAR"}`)
	}, &Options{Workers: 1, Timeout: 50 * time.Millisecond})

	//
	// Hold the only worker until well after the request's deadline has passed.
	//
	release := make(chan struct{})

	if err := client.pool.Submit(func() { <-release }); err != nil {
		t.Fatalf("Failed to occupy the worker. (Error: %s)", err)
	}

	start := time.Now()

	_, err := client.GetTicker(exchange.Unauthenticated)

	if !errors.Is(err, exchange.ErrTimeout) {
		t.Fatalf("Expected a timeout error, got %T (%v).", err, err)
	}

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("The call should have returned at the timeout, but took %s.", elapsed)
	}

	close(release)

	//
	// Closing drains the queue, so the expired request has been picked up by now.
	//
	if err := client.Close(); err != nil {
		t.Fatalf("Close should succeed. (Error: %v)", err)
	}

	if n := hits.Load(); n != 0 {
		t.Errorf("A request that expired while queued should never reach the server, but it was sent %d time(s).", n)
	}
}

func TestTransportError(t *testing.T) {
	server := httptest.NewTLSServer(http.NotFoundHandler())
	u, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(u.Port())
	httpClient := server.Client()
	server.Close()

	client, err := New("", "", &Options{Hostname: u.Hostname(), Port: port, HTTPClient: httpClient})
	if err != nil {
		t.Fatalf("Failed to build client. (Error: %s)", err)
	}
	defer client.Close()

	_, err = client.GetTicker(exchange.Unauthenticated)
	if err == nil {
		t.Fatalf("Expected an error from a closed server.")
	}

	var apiErr exchange.APIError
	if errors.As(err, &apiErr) || errors.Is(err, exchange.ErrTimeout) {
		t.Errorf("A connection failure should be neither an API error nor a timeout, got %v.", err)
	}
}

func TestCustomCA(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok": true}`)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "ca.pem")
	block := &pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw}

	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatalf("Failed to write CA file. (Error: %s)", err)
	}

	u, _ := url.Parse(server.URL)
	port, _ := strconv.Atoi(u.Port())

	client, err := New("", "", &Options{Hostname: u.Hostname(), Port: port, CA: path})
	if err != nil {
		t.Fatalf("Failed to build client. (Error: %s)", err)
	}
	defer client.Close()

	if _, err := client.GetAllTickers(exchange.Unauthenticated); err != nil {
		t.Fatalf("A server signed by the configured CA should be trusted. (Error: %v)", err)
	}

	//
	// Without the CA the same server must be rejected.
	//
	untrusting, err := New("", "", &Options{Hostname: u.Hostname(), Port: port})
	if err != nil {
		t.Fatalf("Failed to build client. (Error: %s)", err)
	}
	defer untrusting.Close()

	if _, err := untrusting.GetAllTickers(exchange.Unauthenticated); err == nil {
		t.Errorf("A server signed by an unknown CA should not be trusted.")
	}
}

func TestBadCAFile(t *testing.T) {
	if _, err := New("", "", &Options{CA: filepath.Join(t.TempDir(), "missing.pem")}); err == nil {
		t.Errorf("A missing CA file should fail construction.")
	}

	path := filepath.Join(t.TempDir(), "garbage.pem")
	_ = os.WriteFile(path, []byte("not a certificate"), 0o600)

	if _, err := New("", "", &Options{CA: path}); err == nil {
		t.Errorf("A CA file without certificates should fail construction.")
	}
}

func TestClose(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	}, &Options{Logger: zap.New(core)})

	if _, err := client.GetBalance(exchange.Authenticated); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close should succeed. (Error: %s)", err)
	}

	if logs.FilterMessage("The worker pool has shut down.").Len() != 1 {
		t.Errorf("Close should log that the worker pool has shut down.")
	}

	if _, err := client.GetBalance(exchange.Authenticated); !errors.Is(err, workerpool.ErrStopped) {
		t.Errorf("Calls after Close should fail with ErrStopped, got %v.", err)
	}

	if err := client.Close(); !errors.Is(err, workerpool.ErrNotRunning) {
		t.Errorf("A second Close should fail with ErrNotRunning, got %v.", err)
	}
}

func TestCloseWaitsForInFlightRequests(t *testing.T) {
	release := make(chan struct{})
	arrived := make(chan struct{})

	client, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(arrived)
		<-release

		writeJSON(w, http.StatusOK, `{"done": true}`)
	}, nil)

	chResp := make(chan error, 1)

	go func() {
		_, err := client.GetAllTickers(exchange.Unauthenticated)

		chResp <- err
	}()

	<-arrived

	chClosed := make(chan error, 1)

	go func() { chClosed <- client.Close() }()

	select {
	case <-chClosed:
		t.Fatalf("Close should not return while a request is in flight.")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)

	if err := <-chResp; err != nil {
		t.Errorf("The in-flight request should complete. (Error: %v)", err)
	}

	if err := <-chClosed; err != nil {
		t.Errorf("Close should succeed. (Error: %v)", err)
	}
}
