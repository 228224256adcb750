// Package somgilapi is the HTTP client for the Somgil travel-booking backend.
package somgilapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"somgil/internal/metrics"
	"somgil/internal/models"
)

// SortByReviewRating is the only list ordering the backend supports.
const SortByReviewRating = "reviewRating"

// Client calls the Somgil backend REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// LoginResponse is the body returned by the code-exchange endpoint.
type LoginResponse struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// NewClient constructs a client for the given base URL with a bounded
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Inf, 0),
		logger:     logger.With().Str("component", "somgilapi").Logger(),
	}
}

// UseRateLimit bounds the outgoing request rate.
func (c *Client) UseRateLimit(perSecond float64, burst int) {
	if perSecond <= 0 || burst <= 0 {
		return
	}
	c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
}

// UseRedisCache configures optional Redis caching for catalog GET endpoints.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// ExchangeKakaoCode trades an authorization code for a backend session.
func (c *Client) ExchangeKakaoCode(ctx context.Context, code string) (*LoginResponse, error) {
	if code == "" {
		return nil, ValidationError("/api/users/login/kakao", fmt.Errorf("empty authorization code"))
	}
	endpoint := fmt.Sprintf("%s/api/users/login/kakao?code=%s", c.baseURL, url.QueryEscape(code))
	var resp LoginResponse
	if err := c.doGet(ctx, "/api/users/login/kakao", endpoint, "", &resp); err != nil {
		return nil, err
	}
	if resp.Token == "" {
		return nil, &Error{Kind: KindNetworkFailure, Endpoint: "/api/users/login/kakao",
			Err: fmt.Errorf("login response carried no token")}
	}
	return &resp, nil
}

// ListPackages fetches packages of one type sorted by review rating.
// An empty slice is a valid result, not an error.
func (c *Client) ListPackages(ctx context.Context, packageType models.PackageType) ([]models.Package, error) {
	if !packageType.Valid() {
		return nil, ValidationError("/api/package/list", fmt.Errorf("unknown package type %q", packageType))
	}
	endpoint := fmt.Sprintf("%s/api/package/list?sort=%s&type=%s",
		c.baseURL, SortByReviewRating, url.QueryEscape(string(packageType)))
	cacheKey := fmt.Sprintf("packages:%s:%s", packageType, SortByReviewRating)

	var packages []models.Package
	if c.readCache(ctx, cacheKey, &packages) {
		return packages, nil
	}
	if err := c.doGet(ctx, "/api/package/list", endpoint, "", &packages); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, packages)
	return packages, nil
}

// RecommendedPackages fetches the home-feed recommendations.
func (c *Client) RecommendedPackages(ctx context.Context) ([]models.Package, error) {
	endpoint := c.baseURL + "/api/package/recommended"
	cacheKey := "packages:recommended"

	var packages []models.Package
	if c.readCache(ctx, cacheKey, &packages) {
		return packages, nil
	}
	if err := c.doGet(ctx, "/api/package/recommended", endpoint, "", &packages); err != nil {
		return nil, err
	}
	c.writeCache(ctx, cacheKey, packages)
	return packages, nil
}

// PackageDetail fetches one package record. The backend expects the id as a
// string inside a POST body.
func (c *Client) PackageDetail(ctx context.Context, packageID int64) (*models.Package, error) {
	endpoint := c.baseURL + "/api/package/details"
	body := struct {
		PackageID string `json:"packageId"`
	}{PackageID: strconv.FormatInt(packageID, 10)}

	var pkg models.Package
	if err := c.doPost(ctx, "/api/package/details", endpoint, "", body, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

// RequestApproval runs the non-mutating pricing check that precedes
// reservation creation.
func (c *Client) RequestApproval(ctx context.Context, token string, req models.ReservationRequest) error {
	if token == "" {
		return &Error{Kind: KindAuthRequired, Endpoint: "/api/reservation/approval"}
	}
	endpoint := c.baseURL + "/api/reservation/approval"
	return c.doPost(ctx, "/api/reservation/approval", endpoint, token, req, nil)
}

// CreateReservation creates the reservation. Only mutating step of the
// two-phase protocol; callers must have observed approval success first.
func (c *Client) CreateReservation(ctx context.Context, token string, req models.ReservationRequest) error {
	if token == "" {
		return &Error{Kind: KindAuthRequired, Endpoint: "/api/reservations"}
	}
	endpoint := c.baseURL + "/api/reservations"
	return c.doPost(ctx, "/api/reservations", endpoint, token, req, nil)
}

// ListReservations fetches the caller's reservations.
func (c *Client) ListReservations(ctx context.Context, token string) ([]models.Reservation, error) {
	if token == "" {
		return nil, &Error{Kind: KindAuthRequired, Endpoint: "/api/reservation/list"}
	}
	endpoint := c.baseURL + "/api/reservation/list"
	var reservations []models.Reservation
	if err := c.doGet(ctx, "/api/reservation/list", endpoint, token, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// ValidateToken re-checks the token against the backend. The contract has no
// dedicated whoami endpoint, so the cheapest authenticated read stands in.
// A 401 is a definitive rejection; any other failure leaves the token
// unjudged and is returned as an error.
func (c *Client) ValidateToken(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	_, err := c.ListReservations(ctx, token)
	if err == nil {
		return true, nil
	}
	if IsKind(err, KindAuthExpired) {
		return false, nil
	}
	return false, err
}

// SubmitReview posts a review for a reservation.
func (c *Client) SubmitReview(ctx context.Context, token string, review models.Review) error {
	if token == "" {
		return &Error{Kind: KindAuthRequired, Endpoint: "/api/reviews"}
	}
	endpoint := c.baseURL + "/api/reviews"
	return c.doPost(ctx, "/api/reviews", endpoint, token, review, nil)
}

// ListReviews fetches the caller's own reviews.
func (c *Client) ListReviews(ctx context.Context, token string) ([]models.Review, error) {
	if token == "" {
		return nil, &Error{Kind: KindAuthRequired, Endpoint: "/api/reviews"}
	}
	endpoint := c.baseURL + "/api/reviews"
	var reviews []models.Review
	if err := c.doGet(ctx, "/api/reviews", endpoint, token, &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.cacheTTL).Err()
}

func (c *Client) doGet(ctx context.Context, name, endpoint, token string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Err: err}
	}
	c.addHeaders(req, token)
	return c.do(name, req, out)
}

func (c *Client) doPost(ctx context.Context, name, endpoint, token string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(data)))
	if err != nil {
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	c.addHeaders(req, token)
	return c.do(name, req, out)
}

func (c *Client) do(name string, req *http.Request, out any) error {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Err: err}
	}

	requestID := uuid.New().String()
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.IncAPIRequest(name, "transport_error")
		c.logger.Warn().Str("endpoint", name).Str("request_id", requestID).Err(err).Msg("request failed")
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		metrics.IncAPIRequest(name, "unauthorized")
		return &Error{Kind: KindAuthExpired, Endpoint: name, Status: resp.StatusCode}
	}
	if resp.StatusCode >= 300 {
		metrics.IncAPIRequest(name, "error")
		c.logger.Warn().Str("endpoint", name).Str("request_id", requestID).
			Int("status", resp.StatusCode).Msg("non-2xx response")
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Status: resp.StatusCode}
	}

	metrics.IncAPIRequest(name, "ok")
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindNetworkFailure, Endpoint: name, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func (c *Client) addHeaders(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
