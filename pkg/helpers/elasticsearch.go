package helpers

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ESOptions configures the directory search cluster connection.
type ESOptions struct {
	Addrs    []string
	Username string
	Password string
	// Timeout bounds dialing and waiting for response headers. Zero means 5s.
	Timeout time.Duration
}

// NewESClient builds a client for the directory index. Requests are retried
// on gateway errors only; a 429 is left to the caller.
func NewESClient(opts ESOptions) (*elasticsearch.Client, error) {
	if len(opts.Addrs) == 0 {
		return nil, errors.New("elasticsearch: no addresses configured")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     opts.Addrs,
		Username:      opts.Username,
		Password:      opts.Password,
		RetryOnStatus: []int{http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout},
		MaxRetries:    2,
		Transport: &http.Transport{
			MaxIdleConnsPerHost:   10,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
		},
	})
}

// PingES reports whether the cluster answers. Startup uses it to decide
// between the index and the directory fallback.
func PingES(ctx context.Context, es *elasticsearch.Client) error {
	res, err := es.Ping(es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: ping: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch: ping: %s", res.Status())
	}
	return nil
}
