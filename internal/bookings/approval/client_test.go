package approval

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"business_services_hub/platform/apperr"
	"business_services_hub/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "approval-test-secret"

type testApprovalConfig struct {
	url string
}

func (c testApprovalConfig) GetApprovalEndpointURL() string    { return c.url }
func (c testApprovalConfig) GetApprovalTimeout() time.Duration { return 2 * time.Second }
func (c testApprovalConfig) GetApprovalLockTTL() time.Duration { return time.Minute }
func (c testApprovalConfig) GetJWTAccessSecret() string        { return testSecret }

func TestApproveSendsSignedRequest(t *testing.T) {
	bookingID, actorID := uuid.New(), uuid.New()

	var got approveRequest
	var header http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(testApprovalConfig{url: server.URL}, logger.Discard())
	require.NoError(t, client.Approve(context.Background(), bookingID, actorID))

	assert.Equal(t, approveRequest{BookingID: bookingID.String(), Action: "approve"}, got)
	assert.Equal(t, IdempotencyKey(bookingID), header.Get("Idempotency-Key"))

	raw := strings.TrimPrefix(header.Get("Authorization"), "Bearer ")
	parsed, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, actorID.String(), claims["sub"])
	assert.Equal(t, "access", claims["type"])
	assert.Equal(t, []interface{}{ServiceRole}, claims["roles"])
}

func TestApproveMapsStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusConflict, apperr.KindConflict},
		{http.StatusNotFound, apperr.KindNotFound},
		{http.StatusUnauthorized, apperr.KindUnauthorized},
		{http.StatusBadGateway, apperr.KindUnavailable},
		{http.StatusInternalServerError, apperr.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer server.Close()

			client := NewClient(testApprovalConfig{url: server.URL}, logger.Discard())
			err := client.Approve(context.Background(), uuid.New(), uuid.New())
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperr.GetKind(err))
		})
	}
}

func TestApproveDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(testApprovalConfig{url: server.URL}, logger.Discard())
	assert.Error(t, client.Approve(context.Background(), uuid.New(), uuid.New()))
	assert.Equal(t, int32(1), calls.Load())
}

func TestApproveUnreachableEndpoint(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(testApprovalConfig{url: url}, logger.Discard())
	err := client.Approve(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}
