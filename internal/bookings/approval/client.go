// Package approval talks to the booking approval endpoint and guards
// concurrent approvals of the same booking.
package approval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"business_services_hub/platform/apperr"
	"business_services_hub/platform/config"
	"business_services_hub/platform/logger"
	"business_services_hub/platform/metrics"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// ServiceRole is the role carried by the tokens the client signs.
	ServiceRole = "service"

	actionApprove   = "approve"
	serviceTokenTTL = time.Minute
	maxErrorBody    = 4 << 10
	defaultTimeout  = 10 * time.Second
)

// Client posts approvals to the approval endpoint with a short-lived
// service token. It never retries.
type Client struct {
	httpClient *http.Client
	endpoint   string
	secret     []byte
	log        *logger.Logger
	now        func() time.Time
}

// NewClient creates a new approval endpoint client.
func NewClient(cfg config.ApprovalConfig, log *logger.Logger) *Client {
	timeout := cfg.GetApprovalTimeout()
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   cfg.GetApprovalEndpointURL(),
		secret:     []byte(cfg.GetJWTAccessSecret()),
		log:        log,
		now:        time.Now,
	}
}

type approveRequest struct {
	BookingID string `json:"booking_id"`
	Action    string `json:"action"`
}

// Approve asks the endpoint to approve bookingID on behalf of actorID.
// Any non-2xx answer is an error; 409 maps to an apperr conflict.
func (c *Client) Approve(ctx context.Context, bookingID, actorID uuid.UUID) error {
	body, err := json.Marshal(approveRequest{BookingID: bookingID.String(), Action: actionApprove})
	if err != nil {
		return fmt.Errorf("encode approval request: %w", err)
	}

	token, err := c.serviceToken(actorID)
	if err != nil {
		return fmt.Errorf("sign service token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Idempotency-Key", IdempotencyKey(bookingID))

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordApprovalCall("error", time.Since(start))
		return apperr.Unavailable("approval endpoint unreachable", err)
	}
	defer resp.Body.Close()
	metrics.RecordApprovalCall(strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	c.log.Error("approval endpoint rejected request",
		"bookingId", bookingID, "status", resp.StatusCode, "body", string(detail))

	switch resp.StatusCode {
	case http.StatusConflict:
		return apperr.Conflict("booking is not pending approval")
	case http.StatusNotFound:
		return apperr.NotFound("booking not found")
	case http.StatusUnauthorized, http.StatusForbidden:
		return apperr.Unauthorized("approval endpoint refused the service token")
	default:
		return apperr.Unavailable(fmt.Sprintf("approval endpoint returned %d", resp.StatusCode), nil)
	}
}

func (c *Client) serviceToken(actorID uuid.UUID) (string, error) {
	now := c.now()
	claims := jwt.MapClaims{
		"sub":   actorID.String(),
		"type":  "access",
		"roles": []string{ServiceRole},
		"iat":   now.Unix(),
		"exp":   now.Add(serviceTokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// IdempotencyKey is the key sent with every approval of bookingID.
func IdempotencyKey(bookingID uuid.UUID) string {
	return "booking-approve-" + bookingID.String()
}
