package dependency

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/httpclient"
	"github.com/prilive-com/gatego/internal/scrub"
)

const maxResponseSize = 10 << 20 // 10MB

// HTTPTarget turns HTTP endpoints of one downstream service into
// guarded call functions. Transport and status-code failures are
// classified into the module's error taxonomy so retry and breaker
// accounting see the right kinds.
type HTTPTarget struct {
	name    string
	baseURL string
	client  *http.Client
	auth    scrub.Secret
}

// NewHTTPTarget creates a target for the dependency at baseURL.
// A nil client gets the tuned default transport.
func NewHTTPTarget(name, baseURL string, client *http.Client) *HTTPTarget {
	if client == nil {
		client = httpclient.NewDefault()
	}
	return &HTTPTarget{
		name:    name,
		baseURL: baseURL,
		client:  client,
	}
}

// WithBearer sets a bearer credential sent on every request. The
// credential is scrubbed from transport error messages.
func (t *HTTPTarget) WithBearer(secret scrub.Secret) *HTTPTarget {
	t.auth = secret
	return t
}

// Get returns a call function performing GET on path.
func (t *HTTPTarget) Get(path string) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		return t.roundTrip(ctx, http.MethodGet, path, nil)
	}
}

// Post returns a call function performing POST on path with a JSON body.
func (t *HTTPTarget) Post(path string, body []byte) func(ctx context.Context) ([]byte, error) {
	return func(ctx context.Context) ([]byte, error) {
		return t.roundTrip(ctx, http.MethodPost, path, body)
	}
}

func (t *HTTPTarget) roundTrip(ctx context.Context, method, path string, body []byte) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, gate.NewCallError(t.name, gate.ErrorKindMalformed, err)
	}
	if t.auth != "" {
		req.Header.Set("Authorization", "Bearer "+t.auth.Value())
	}

	resp, err := httpclient.DoJSON(ctx, t.client, req)
	if err != nil {
		return nil, t.classifyTransport(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		return nil, gate.NewCallError(t.name, gate.ErrorKindUnavailable, err)
	}
	if int64(len(payload)) > maxResponseSize {
		return nil, gate.NewCallError(t.name, gate.ErrorKindInternal,
			fmt.Errorf("response exceeds %d bytes", maxResponseSize))
	}

	if kind := classifyStatus(resp.StatusCode); kind != gate.ErrorKindNone {
		return nil, gate.NewCallError(t.name, kind,
			fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode))
	}

	return payload, nil
}

func (t *HTTPTarget) classifyTransport(err error) error {
	err = scrub.FromError(err, t.auth)

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return gate.NewCallError(t.name, gate.ErrorKindTimeout, err)
	}
	return gate.NewCallError(t.name, gate.ErrorKindUnavailable, err)
}

func classifyStatus(status int) gate.ErrorKind {
	switch {
	case status < 400:
		return gate.ErrorKindNone
	case status == http.StatusTooManyRequests:
		return gate.ErrorKindRateLimited
	case status == http.StatusRequestTimeout, status == http.StatusGatewayTimeout:
		return gate.ErrorKindTimeout
	case status < 500:
		return gate.ErrorKindMalformed
	default:
		return gate.ErrorKindInternal
	}
}
