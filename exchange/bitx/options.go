package bitx

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/lukehollenback/gobitx/constants"
	"go.uber.org/zap"
)

//
// Options holds the optional settings of a Client. Any field left at its zero value falls back to
// its default.
//
type Options struct {
	Hostname string
	Port     int
	Pair     string
	Timeout  time.Duration

	// CA is the path to a PEM file of certificate authorities to trust instead of the system pool.
	// It is ignored when HTTPClient is provided.
	CA string

	// Workers is the number of requests that may be in flight at once.
	Workers int

	Logger     *zap.Logger
	HTTPClient *http.Client
}

//
// DefaultOptions returns the options a Client uses when none are provided.
//
func DefaultOptions() *Options {
	return &Options{
		Hostname: DefaultHostname,
		Port:     DefaultPort,
		Pair:     DefaultPair,
		Timeout:  constants.DefaultTimeout,
		Workers:  constants.DefaultWorkers,
	}
}

//
// withDefaults returns a copy of the options with every unset field filled in.
//
func (o *Options) withDefaults() *Options {
	resolved := DefaultOptions()

	if o == nil {
		return resolved
	}

	if o.Hostname != "" {
		resolved.Hostname = o.Hostname
	}

	if o.Port != 0 {
		resolved.Port = o.Port
	}

	if o.Pair != "" {
		resolved.Pair = o.Pair
	}

	if o.Timeout > 0 {
		resolved.Timeout = o.Timeout
	}

	if o.Workers > 0 {
		resolved.Workers = o.Workers
	}

	resolved.CA = o.CA
	resolved.Logger = o.Logger
	resolved.HTTPClient = o.HTTPClient

	return resolved
}

//
// httpClient builds the HTTP client requests are sent through, trusting the configured CA file if
// there is one.
//
func (o *Options) httpClient() (*http.Client, error) {
	if o.HTTPClient != nil {
		return o.HTTPClient, nil
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	if o.CA != "" {
		pem, err := os.ReadFile(o.CA)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file %s: %w", o.CA, err)
		}

		roots := x509.NewCertPool()
		if !roots.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates could be parsed from CA file %s", o.CA)
		}

		transport.TLSClientConfig = &tls.Config{
			RootCAs: roots,
		}
	}

	return &http.Client{Transport: transport}, nil
}
