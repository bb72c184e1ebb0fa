package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jarcoal/httpmock"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"drama-platform-client/internal/domain"
	"drama-platform-client/internal/session"
	"drama-platform-client/pkg/locker"
)

const (
	testBaseURL  = "https://api.example.com/api/v1"
	testHotURL   = testBaseURL + "/dramas/hot"
	testProfile  = testBaseURL + "/auth/profile"
	testLoginURL = testBaseURL + "/login"
)

// countingStore records how many times the session was cleared.
type countingStore struct {
	*session.MemoryStore
	clears atomic.Int32
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.clears.Add(1)
	return s.MemoryStore.Clear(ctx)
}

func newCountingStore(token string) *countingStore {
	s := &countingStore{MemoryStore: session.NewMemoryStore()}
	if token != "" {
		_ = s.Save(context.Background(), &domain.Session{
			AccessToken: token,
			User:        &domain.User{ID: "u1", Username: "ling"},
		})
	}
	return s
}

// failingStore cannot be read.
type failingStore struct {
	session.MemoryStore
}

func (*failingStore) Load(context.Context) (*domain.Session, error) {
	return nil, errors.New("disk on fire")
}

func newTestClient(store domain.SessionStore, opts ...Option) *Client {
	return newTestClientWithConfig(Config{BaseURL: testBaseURL, Timeout: 5 * time.Second}, store, opts...)
}

func newTestClientWithConfig(cfg Config, store domain.SessionStore, opts ...Option) *Client {
	client := New(cfg, store, zap.NewNop(), opts...)

	// Activate httpmock for this client's HTTP transport
	httpmock.ActivateNonDefault(client.HTTPClient())

	return client
}

func dramasResponder(titles ...string) httpmock.Responder {
	items := make([]domain.Drama, 0, len(titles))
	for i, title := range titles {
		items = append(items, domain.Drama{ID: fmt.Sprintf("d%d", i+1), Title: title})
	}
	return httpmock.NewJsonResponderOrPanic(200, map[string]any{"data": items})
}

// TestClient_AttachesBearerToken verifies the stored token is sent verbatim.
func TestClient_AttachesBearerToken(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	var gotAuth string
	httpmock.RegisterResponder("GET", testHotURL,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(200, map[string]any{"data": []domain.Drama{}})
		})

	client := newTestClient(newCountingStore("tok123"))
	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.NoError(t, err)
	assert.Equal(t, "Bearer tok123", gotAuth)
}

// TestClient_NoTokenNoAuthorizationHeader verifies anonymous requests carry no Authorization header.
func TestClient_NoTokenNoAuthorizationHeader(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	present := true
	httpmock.RegisterResponder("GET", testHotURL,
		func(req *http.Request) (*http.Response, error) {
			_, present = req.Header["Authorization"]
			return httpmock.NewJsonResponse(200, map[string]any{"data": []domain.Drama{}})
		})

	client := newTestClient(newCountingStore(""))
	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.NoError(t, err)
	assert.False(t, present, "Authorization header must be absent without a session")
}

// TestClient_StoreReadFailureSendsUnauthenticated verifies the outbound hook never fails a request.
func TestClient_StoreReadFailureSendsUnauthenticated(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	var gotAuth string
	httpmock.RegisterResponder("GET", testHotURL,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(200, map[string]any{"data": []domain.Drama{}})
		})

	client := newTestClient(&failingStore{})
	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

// TestClient_DefaultHeaders verifies content type and request id headers.
func TestClient_DefaultHeaders(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	var ids []string
	httpmock.RegisterResponder("GET", testHotURL,
		func(req *http.Request) (*http.Response, error) {
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
			ids = append(ids, req.Header.Get(HeaderRequestID))
			return httpmock.NewJsonResponse(200, map[string]any{"data": []domain.Drama{}})
		})

	client := newTestClient(nil)
	for i := 0; i < 2; i++ {
		_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)
		require.NoError(t, err)
	}

	require.Len(t, ids, 2)
	assert.NotEmpty(t, ids[0])
	assert.NotEqual(t, ids[0], ids[1], "each request gets its own id")
}

// TestClient_Get_UnwrapsEnvelope verifies the data envelope is decoded in order.
func TestClient_Get_UnwrapsEnvelope(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL, dramasResponder("A", "B", "C"))

	client := newTestClient(nil)
	dramas, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.NoError(t, err)
	require.Len(t, dramas, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{dramas[0].Title, dramas[1].Title, dramas[2].Title})
}

// TestClient_Unauthorized_TearsDownOnce verifies a 401 clears the session exactly once and is still returned.
func TestClient_Unauthorized_TearsDownOnce(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProfile,
		httpmock.NewJsonResponderOrPanic(401, map[string]any{"message": "Token expired"}))

	store := newCountingStore("stale")
	var expiredCalls atomic.Int32
	client := newTestClient(store, WithSessionExpiredHook(func(context.Context) {
		expiredCalls.Add(1)
	}))

	_, err := Get[domain.User](context.Background(), client, "/auth/profile", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, 401, apiErr.StatusCode)
	assert.Equal(t, "Token expired", apiErr.Message)
	assert.Equal(t, "/auth/profile", apiErr.Path)

	assert.Equal(t, int32(1), store.clears.Load(), "session cleared exactly once")
	assert.Equal(t, int32(1), expiredCalls.Load(), "expiry hook fired exactly once")

	s, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, s, "token and user must both be gone")

	info := httpmock.GetCallCountInfo()
	assert.Equal(t, 1, info["GET "+testProfile], "the failed request is never re-issued")
}

// TestClient_Unauthorized_HookDoesNotRecurse verifies a 401 raised from inside the expiry hook does not tear down again.
func TestClient_Unauthorized_HookDoesNotRecurse(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProfile,
		httpmock.NewStringResponder(401, `{"message":"Token expired"}`))
	httpmock.RegisterResponder("GET", testLoginURL,
		httpmock.NewStringResponder(401, `{"message":"Login required"}`))

	store := newCountingStore("stale")
	var expiredCalls atomic.Int32
	var nestedErr error

	var client *Client
	client = newTestClient(store, WithSessionExpiredHook(func(ctx context.Context) {
		expiredCalls.Add(1)
		// Navigating to the login entry point answers 401 as well.
		nestedErr = client.Do(ctx, http.MethodGet, "/login", nil, nil, nil)
	}))

	err := client.Do(context.Background(), http.MethodGet, "/auth/profile", nil, nil, nil)

	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, nestedErr, ErrUnauthorized, "nested failure is still surfaced")
	assert.Equal(t, int32(1), store.clears.Load())
	assert.Equal(t, int32(1), expiredCalls.Load())
}

// TestClient_Unauthorized_NextRequestIsAnonymous verifies no token is sent after teardown.
func TestClient_Unauthorized_NextRequestIsAnonymous(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testProfile,
		httpmock.NewStringResponder(401, `{"message":"Token expired"}`))

	var gotAuth string
	httpmock.RegisterResponder("GET", testHotURL,
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(200, map[string]any{"data": []domain.Drama{}})
		})

	client := newTestClient(newCountingStore("stale"))

	_, err := Get[domain.User](context.Background(), client, "/auth/profile", nil)
	require.Error(t, err)

	_, err = Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_Unauthorized_ClearsRedisSessionWhileLocked(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	ctx := context.Background()

	store := session.NewRedisStore(rdb, locker.NewRedisLocker(rdb, zap.NewNop(), locker.WithTries(1)),
		zap.NewNop(), "drama-client:session", 5*time.Second)
	require.NoError(t, store.Save(ctx, &domain.Session{AccessToken: "stale"}))

	// Another process is mid-save.
	holder := locker.NewRedisLocker(rdb, zap.NewNop(), locker.WithTries(1))
	acquired, err := holder.Acquire(ctx, "drama-client:session:lock", 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	var sent []string
	httpmock.RegisterResponder("GET", testProfile,
		func(req *http.Request) (*http.Response, error) {
			sent = append(sent, req.Header.Get("Authorization"))
			return httpmock.NewStringResponse(401, `{"message":"Token expired"}`), nil
		})

	client := newTestClient(store)

	_, err = Get[domain.User](ctx, client, "/auth/profile", nil)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = Get[domain.User](ctx, client, "/auth/profile", nil)
	require.ErrorIs(t, err, ErrUnauthorized)

	assert.Equal(t, []string{"Bearer stale", ""}, sent)
	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

// TestClient_ValidationError verifies 4xx bodies surface verbatim without touching the session.
func TestClient_ValidationError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		httpmock.NewJsonResponderOrPanic(422, map[string]any{
			"success": false,
			"message": "limit must not exceed 50",
			"code":    "LIMIT_TOO_LARGE",
		}))

	store := newCountingStore("tok123")
	client := newTestClient(store)

	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrUnauthorized)

	apiErr, _ := AsError(err)
	assert.Equal(t, "limit must not exceed 50", apiErr.Message)
	assert.Equal(t, "LIMIT_TOO_LARGE", apiErr.Code)
	assert.False(t, apiErr.Temporary())
	assert.Contains(t, err.Error(), "status 422")
	assert.Equal(t, int32(0), store.clears.Load())
}

// TestClient_ErrorFieldAsMessage verifies the {"error": "..."} body shape.
func TestClient_ErrorFieldAsMessage(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		httpmock.NewStringResponder(404, `{"error":"Drama not found"}`))

	client := newTestClient(nil)
	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	apiErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, "Drama not found", apiErr.Message)
	assert.Equal(t, KindValidation, apiErr.Kind)
}

// TestClient_ServerError_NoRetry verifies 5xx is surfaced after a single attempt.
func TestClient_ServerError_NoRetry(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	tests := []struct {
		name       string
		statusCode int
	}{
		{"500 Internal Server Error", 500},
		{"502 Bad Gateway", 502},
		{"503 Service Unavailable", 503},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpmock.Reset()
			httpmock.RegisterResponder("GET", testHotURL,
				httpmock.NewStringResponder(tt.statusCode, "Server Error"))

			client := newTestClient(nil)
			dramas, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

			require.Error(t, err)
			assert.Nil(t, dramas)
			assert.ErrorIs(t, err, ErrServer)
			assert.Contains(t, err.Error(), fmt.Sprintf("status %d", tt.statusCode))

			apiErr, _ := AsError(err)
			assert.True(t, apiErr.Temporary())
			assert.Equal(t, 1, httpmock.GetTotalCallCount())
		})
	}
}

// TestClient_NetworkError verifies network failures are transport errors without a status.
func TestClient_NetworkError(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		httpmock.NewErrorResponder(fmt.Errorf("network error: connection refused")))

	client := newTestClient(nil)
	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "connection refused")

	apiErr, _ := AsError(err)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

// TestClient_Timeout verifies the fixed client timeout applies.
func TestClient_Timeout(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		func(_ *http.Request) (*http.Response, error) {
			time.Sleep(300 * time.Millisecond)
			return httpmock.NewJsonResponse(200, map[string]any{"data": []domain.Drama{}})
		})

	client := newTestClientWithConfig(Config{BaseURL: testBaseURL, Timeout: 50 * time.Millisecond}, nil)
	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

// TestClient_MalformedBody verifies an undecodable 2xx body is a transport error, not an empty result.
func TestClient_MalformedBody(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		httpmock.NewStringResponder(200, "not json at all"))

	client := newTestClient(nil)
	dramas, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.Error(t, err)
	assert.Nil(t, dramas)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "decoding response")
}

// TestClient_CircuitBreaker_Opens verifies the optional breaker fails fast once open.
func TestClient_CircuitBreaker_Opens(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		httpmock.NewStringResponder(500, "Internal Server Error"))

	client := newTestClientWithConfig(Config{
		BaseURL: testBaseURL,
		Timeout: 5 * time.Second,
		CB: CBConfig{
			Enabled:      true,
			MaxRequests:  1,
			Interval:     60 * time.Second,
			Timeout:      15 * time.Second,
			FailureRatio: 0.6,
		},
	}, nil)

	for i := 0; i < 3; i++ {
		_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)
		require.ErrorIs(t, err, ErrServer)
	}

	_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Contains(t, err.Error(), "circuit open")
	assert.Equal(t, 3, httpmock.GetTotalCallCount(), "open breaker must not hit the network")
}

// TestClient_CircuitBreaker_IgnoresClientErrors verifies 4xx never trips the breaker.
func TestClient_CircuitBreaker_IgnoresClientErrors(t *testing.T) {
	defer httpmock.DeactivateAndReset()

	httpmock.RegisterResponder("GET", testHotURL,
		httpmock.NewStringResponder(400, `{"message":"bad limit"}`))

	client := newTestClientWithConfig(Config{
		BaseURL: testBaseURL,
		Timeout: 5 * time.Second,
		CB:      CBConfig{Enabled: true, MaxRequests: 1, Interval: time.Minute, Timeout: time.Minute, FailureRatio: 0.5},
	}, nil)

	for i := 0; i < 5; i++ {
		_, err := Get[[]domain.Drama](context.Background(), client, "/dramas/hot", nil)
		require.ErrorIs(t, err, ErrValidation)
	}

	assert.Equal(t, 5, httpmock.GetTotalCallCount())
}

// TestClient_Validate verifies local validation produces validation errors without network I/O.
func TestClient_Validate(t *testing.T) {
	client := New(Config{BaseURL: testBaseURL}, nil, zap.NewNop())

	type params struct {
		Limit int `query:"limit" validate:"min=1,max=100"`
	}

	err := client.Validate(&params{Limit: 500})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	apiErr, _ := AsError(err)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.Equal(t, "limit must be at most 100", apiErr.Message)

	assert.NoError(t, client.Validate(&params{Limit: 8}))
}
