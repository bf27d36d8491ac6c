package travelpay_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripdesk/tripdesk/internal/resilience"
	"github.com/tripdesk/tripdesk/internal/travelpay"
)

func newTestClient(t *testing.T) *travelpay.Client {
	t.Helper()

	cbConfig := resilience.DefaultCircuitBreakerConfig("travelpay-test")
	cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.Requests >= 100
	}

	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:            "travelpay-test",
		Timeout:         2 * time.Second,
		MaxRetries:      1,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		CircuitBreaker:  &cbConfig,
	})

	return travelpay.NewClient(travelpay.ClientConfig{
		HTTPClient: httpClient,
		Logger:     zerolog.Nop(),
	})
}

func TestClient_VerifyProductURL_Verified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t)

	result, err := client.VerifyProductURL(context.Background(), server.URL+"/product/zima-2026")
	require.NoError(t, err)
	assert.Equal(t, travelpay.StatusVerified, result.Status)
	assert.Equal(t, http.StatusOK, result.HTTPCode)
	assert.WithinDuration(t, time.Now(), result.CheckedAt, time.Second)
}

func TestClient_VerifyProductURL_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t)

	result, err := client.VerifyProductURL(context.Background(), server.URL+"/product/missing")
	require.NoError(t, err)
	assert.Equal(t, travelpay.StatusNotFound, result.Status)
	assert.Equal(t, http.StatusNotFound, result.HTTPCode)
}

func TestClient_VerifyProductURL_ServerErrorDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t)

	result, err := client.VerifyProductURL(context.Background(), server.URL+"/product/flaky")
	require.NoError(t, err)
	assert.Equal(t, travelpay.StatusUnverified, result.Status)
}

func TestClient_VerifyProductURL_UnreachableDegrades(t *testing.T) {
	client := newTestClient(t)

	// Port 0 is never listening
	result, err := client.VerifyProductURL(context.Background(), "http://127.0.0.1:0/product/x")
	require.NoError(t, err)
	assert.Equal(t, travelpay.StatusUnverified, result.Status)
	assert.Zero(t, result.HTTPCode)
}

func TestClient_VerifyProductURL_InvalidURL(t *testing.T) {
	client := newTestClient(t)

	_, err := client.VerifyProductURL(context.Background(), "ftp://travelpay.pl/product")
	assert.ErrorIs(t, err, travelpay.ErrInvalidProductURL)

	_, err = client.VerifyProductURL(context.Background(), "not a url")
	assert.ErrorIs(t, err, travelpay.ErrInvalidProductURL)
}

func TestClient_VerifyProductURLs_PreservesOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/gone" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t)

	urls := []string{
		server.URL + "/ok",
		server.URL + "/gone",
		"mailto:nope",
	}

	results, err := client.VerifyProductURLs(context.Background(), urls)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, travelpay.StatusVerified, results[0].Status)
	assert.Equal(t, travelpay.StatusNotFound, results[1].Status)
	assert.Equal(t, travelpay.StatusUnverified, results[2].Status)
	assert.Equal(t, "mailto:nope", results[2].URL)
}

func TestClient_Name(t *testing.T) {
	client := newTestClient(t)
	assert.Equal(t, "travelpay", client.Name())
}

type recordedRequest struct {
	upstream  string
	operation string
	err       error
}

type fakeRequestMetrics struct {
	requests []recordedRequest
}

func (m *fakeRequestMetrics) RecordRequest(upstream, operation string, _ time.Duration, err error) {
	m.requests = append(m.requests, recordedRequest{upstream: upstream, operation: operation, err: err})
}

func TestClient_VerifyProductURL_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	metrics := &fakeRequestMetrics{}

	cbConfig := resilience.DefaultCircuitBreakerConfig("travelpay-test")
	cbConfig.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.Requests >= 100
	}
	httpClient := resilience.NewClient(resilience.ClientConfig{
		Name:            "travelpay-test",
		Timeout:         2 * time.Second,
		MaxRetries:      1,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		CircuitBreaker:  &cbConfig,
	})
	client := travelpay.NewClient(travelpay.ClientConfig{
		HTTPClient: httpClient,
		Metrics:    metrics,
		Logger:     zerolog.Nop(),
	})

	_, err := client.VerifyProductURL(context.Background(), server.URL+"/product/zima-2026")
	require.NoError(t, err)

	require.Len(t, metrics.requests, 1)
	assert.Equal(t, travelpay.UpstreamName, metrics.requests[0].upstream)
	assert.Equal(t, "verify-product", metrics.requests[0].operation)
	assert.NoError(t, metrics.requests[0].err)

	_, err = client.VerifyProductURL(context.Background(), "http://127.0.0.1:1/product/unreachable")
	require.NoError(t, err)

	require.Len(t, metrics.requests, 2)
	assert.Error(t, metrics.requests[1].err)
}
