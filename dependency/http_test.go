package dependency_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prilive-com/gatego/dependency"
	"github.com/prilive-com/gatego/gate"
	"github.com/prilive-com/gatego/internal/scrub"
	"github.com/prilive-com/gatego/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPTarget_SuccessReturnsBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":42}`))
	}))
	defer server.Close()

	target := dependency.NewHTTPTarget("orders", server.URL, server.Client())
	client := newTestClient(t)

	body, err := dependency.Invoke(client, context.Background(), target.Get("/orders/42"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":42}`, string(body))
}

func TestHTTPTarget_BearerHeaderSent(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	target := dependency.NewHTTPTarget("orders", server.URL, server.Client()).
		WithBearer(scrub.Secret("sk-live-12345"))
	client := newTestClient(t)

	_, err := dependency.Invoke(client, context.Background(), target.Get("/orders"))
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-live-12345", gotAuth)
}

func TestHTTPTarget_SecretScrubbedFromTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	target := dependency.NewHTTPTarget("orders", url+"/?key=sk-live-12345", nil).
		WithBearer(scrub.Secret("sk-live-12345"))
	client := newTestClient(t, dependency.WithRetries(1))

	_, err := dependency.Invoke(client, context.Background(), target.Get(""))
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "sk-live-12345")
}

func TestHTTPTarget_ServerErrorsAreRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer server.Close()

	target := dependency.NewHTTPTarget("orders", server.URL, server.Client())
	client := newTestClient(t, dependency.WithSleeper(&testutil.FakeSleeper{}), dependency.WithRetries(3))

	body, err := dependency.Invoke(client, context.Background(), target.Get("/orders"))
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestHTTPTarget_ClientErrorNotRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	target := dependency.NewHTTPTarget("orders", server.URL, server.Client())
	client := newTestClient(t, dependency.WithRetries(5))

	_, err := dependency.Invoke(client, context.Background(), target.Get("/orders"))
	require.Error(t, err)
	assert.Equal(t, gate.ErrorKindMalformed, gate.KindOf(err))
	assert.Equal(t, int32(1), attempts.Load())
}

func TestHTTPTarget_ConnectionRefusedIsUnavailable(t *testing.T) {
	// Reserve a port, then close it to guarantee a refusal.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	target := dependency.NewHTTPTarget("orders", url, nil)
	client := newTestClient(t, dependency.WithRetries(1))

	_, err := dependency.Invoke(client, context.Background(), target.Get("/orders"))
	require.Error(t, err)
	assert.Equal(t, gate.ErrorKindUnavailable, gate.KindOf(err))
}

func TestHTTPTarget_TooManyRequestsNotRetried(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	target := dependency.NewHTTPTarget("orders", server.URL, server.Client())
	client := newTestClient(t, dependency.WithRetries(4))

	_, err := dependency.Invoke(client, context.Background(), target.Get("/orders"))
	require.Error(t, err)
	assert.Equal(t, gate.ErrorKindRateLimited, gate.KindOf(err))
	assert.Equal(t, int32(1), attempts.Load())
}
