// Package backend is the typed HTTP client for the remote store API. All
// business logic (inventory, pricing, payment capture, order lifecycle)
// lives behind these endpoints; this service only composes them.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/Mauthecat/tienda-sub000/internal/domain"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError carries a backend-provided, user-displayable message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend api: %d: %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[apiResult]
}

type apiResult struct {
	status int
	body   []byte
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	cb := gobreaker.NewCircuitBreaker[apiResult](gobreaker.Settings{
		Name:    "backend-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
	}
}

// do runs one backend call through the circuit breaker. Transport errors
// and 5xx responses count as breaker failures; 4xx responses are valid
// answers from a healthy backend and pass through.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, bearer string) (apiResult, error) {
	return c.cb.Execute(func() (apiResult, error) {
		var reader io.Reader
		if body != nil {
			payload, err := json.Marshal(body)
			if err != nil {
				return apiResult{}, fmt.Errorf("marshal request: %w", err)
			}
			reader = bytes.NewReader(payload)
		}

		u := c.baseURL + path
		if len(query) > 0 {
			u += "?" + query.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, method, u, reader)
		if err != nil {
			return apiResult{}, fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return apiResult{}, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return apiResult{}, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= http.StatusInternalServerError {
			return apiResult{}, fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}

		return apiResult{status: resp.StatusCode, body: data}, nil
	})
}

// errorMessage extracts the backend's message from an error body, falling
// back to the given default.
func errorMessage(body []byte, fallback string) string {
	var payload struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Detail != "" {
			return payload.Detail
		}
	}
	return fallback
}

// Products returns the raw catalog listing. The storefront passes it
// through unmodified, so there is no point decoding it here.
func (c *Client) Products(ctx context.Context) (json.RawMessage, error) {
	res, err := c.do(ctx, http.MethodGet, "/api/products/", nil, nil, "")
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, &APIError{Status: res.status, Message: errorMessage(res.body, "catalog unavailable")}
	}
	return res.body, nil
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Token exchanges credentials for access/refresh tokens. The backend keys
// token issuance on the email, sent as username.
func (c *Client) Token(ctx context.Context, email, password string) (*TokenPair, error) {
	payload := map[string]string{"username": email, "password": password}
	res, err := c.do(ctx, http.MethodPost, "/api/token/", nil, payload, "")
	if err != nil {
		return nil, err
	}
	if res.status == http.StatusUnauthorized {
		return nil, ErrUnauthorized
	}
	if res.status != http.StatusOK {
		return nil, &APIError{Status: res.status, Message: errorMessage(res.body, "token request failed")}
	}

	var pair TokenPair
	if err := json.Unmarshal(res.body, &pair); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	return &pair, nil
}

// Register creates an account. The backend answers 201 on success and an
// error message otherwise.
func (c *Client) Register(ctx context.Context, name, email, password string) error {
	payload := map[string]string{"nombre": name, "email": email, "password": password}
	res, err := c.do(ctx, http.MethodPost, "/api/register/", nil, payload, "")
	if err != nil {
		return err
	}
	if res.status != http.StatusCreated {
		return &APIError{Status: res.status, Message: errorMessage(res.body, "no se pudo crear la cuenta")}
	}
	return nil
}

func (c *Client) Profile(ctx context.Context, email string) (*domain.Profile, error) {
	q := url.Values{"email": {email}}
	res, err := c.do(ctx, http.MethodGet, "/api/profile/", q, nil, "")
	if err != nil {
		return nil, err
	}
	if res.status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.status != http.StatusOK {
		return nil, &APIError{Status: res.status, Message: errorMessage(res.body, "profile unavailable")}
	}

	var p domain.Profile
	if err := json.Unmarshal(res.body, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &p, nil
}

func (c *Client) UpdateProfile(ctx context.Context, p domain.Profile) error {
	res, err := c.do(ctx, http.MethodPost, "/api/profile/update/", nil, p, "")
	if err != nil {
		return err
	}
	if res.status != http.StatusOK {
		return &APIError{Status: res.status, Message: errorMessage(res.body, "no se pudo guardar el perfil")}
	}
	return nil
}

type PaymentItem struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

type PaymentRequest struct {
	Amount   domain.Price        `json:"amount"`
	Email    string              `json:"email"`
	Shipping domain.ShippingForm `json:"shipping"`
	Cart     []PaymentItem       `json:"cart"`
}

type paymentResponse struct {
	URL string `json:"url"`
}

// CreatePayment hands the order off to the payment provider and returns
// the redirect URL for the external payment page.
func (c *Client) CreatePayment(ctx context.Context, req PaymentRequest) (string, error) {
	res, err := c.do(ctx, http.MethodPost, "/api/payment/create/", nil, req, "")
	if err != nil {
		return "", err
	}
	if res.status != http.StatusOK && res.status != http.StatusCreated {
		return "", &APIError{Status: res.status, Message: errorMessage(res.body, "no se pudo iniciar el pago")}
	}

	var pr paymentResponse
	if err := json.Unmarshal(res.body, &pr); err != nil {
		return "", fmt.Errorf("decode payment response: %w", err)
	}
	if pr.URL == "" {
		return "", fmt.Errorf("payment response carried no redirect url")
	}
	return pr.URL, nil
}

// RetryPayment re-initiates payment for a pending order.
func (c *Client) RetryPayment(ctx context.Context, orderID int64, email string) (string, error) {
	payload := map[string]any{"order_id": orderID, "email": email}
	res, err := c.do(ctx, http.MethodPost, "/api/payment/retry/", nil, payload, "")
	if err != nil {
		return "", err
	}
	if res.status != http.StatusOK {
		return "", &APIError{Status: res.status, Message: errorMessage(res.body, "no se pudo reintentar el pago")}
	}

	var pr paymentResponse
	if err := json.Unmarshal(res.body, &pr); err != nil {
		return "", fmt.Errorf("decode retry response: %w", err)
	}
	return pr.URL, nil
}

type trackResponse struct {
	Success bool                 `json:"success"`
	Error   string               `json:"error"`
	Order   *domain.TrackedOrder `json:"order"`
}

// TrackOrder looks up an order by its human-readable code. The bearer
// token is optional; authenticated lookups let the backend decide
// ownership. A structured success:false reply maps to ErrNotFound.
func (c *Client) TrackOrder(ctx context.Context, code, bearer string) (*domain.TrackedOrder, error) {
	q := url.Values{"code": {code}}
	res, err := c.do(ctx, http.MethodGet, "/api/track/", q, nil, bearer)
	if err != nil {
		return nil, err
	}
	if res.status == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if res.status != http.StatusOK {
		return nil, &APIError{Status: res.status, Message: errorMessage(res.body, "tracking unavailable")}
	}

	var tr trackResponse
	if err := json.Unmarshal(res.body, &tr); err != nil {
		return nil, fmt.Errorf("decode track response: %w", err)
	}
	if !tr.Success || tr.Order == nil {
		return nil, ErrNotFound
	}
	return tr.Order, nil
}

// Orders returns the raw order history for an authenticated user.
func (c *Client) Orders(ctx context.Context, email, bearer string) (json.RawMessage, error) {
	q := url.Values{"email": {email}}
	res, err := c.do(ctx, http.MethodGet, "/api/orders/", q, nil, bearer)
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, &APIError{Status: res.status, Message: errorMessage(res.body, "orders unavailable")}
	}
	return res.body, nil
}

type favoritesResponse struct {
	Favorites []int64 `json:"favorites"`
}

func (c *Client) Favorites(ctx context.Context, email string) ([]int64, error) {
	q := url.Values{"email": {email}}
	res, err := c.do(ctx, http.MethodGet, "/api/favorites/", q, nil, "")
	if err != nil {
		return nil, err
	}
	if res.status != http.StatusOK {
		return nil, &APIError{Status: res.status, Message: errorMessage(res.body, "favorites unavailable")}
	}

	var fr favoritesResponse
	if err := json.Unmarshal(res.body, &fr); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return fr.Favorites, nil
}

func (c *Client) ToggleFavorite(ctx context.Context, email string, productID int64) error {
	payload := map[string]any{"email": email, "product_id": productID}
	res, err := c.do(ctx, http.MethodPost, "/api/favorites/toggle/", nil, payload, "")
	if err != nil {
		return err
	}
	if res.status != http.StatusOK {
		return &APIError{Status: res.status, Message: errorMessage(res.body, "toggle failed")}
	}
	return nil
}
