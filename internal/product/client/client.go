package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/ridloal/storefront-dashboard/internal/platform/logger"
	"github.com/ridloal/storefront-dashboard/internal/product/domain"
	sessionDomain "github.com/ridloal/storefront-dashboard/internal/session/domain"
)

var (
	ErrRequestFailed = errors.New("commerce API request failed")

	ErrListProductsFailed  = fmt.Errorf("%w: failed to load products", ErrRequestFailed)
	ErrCreateProductFailed = fmt.Errorf("%w: failed to create product", ErrRequestFailed)
	ErrUpdateProductFailed = fmt.Errorf("%w: failed to update product", ErrRequestFailed)
	ErrDeleteProductFailed = fmt.Errorf("%w: failed to delete product", ErrRequestFailed)
	ErrLoginFailed         = fmt.Errorf("%w: login failed", ErrRequestFailed)
	ErrInvalidCredentials  = fmt.Errorf("%w: invalid credentials", ErrLoginFailed)
)

// Credentials yields the bearer token of the current session, or a session
// error when there is no usable token.
type Credentials interface {
	ValidToken(ctx context.Context) (string, error)
}

type ProductClient interface {
	ListProducts(ctx context.Context, creds Credentials) ([]domain.Product, error)
	CreateProduct(ctx context.Context, creds Credentials, in domain.Input) (*domain.Product, error)
	UpdateProduct(ctx context.Context, creds Credentials, id domain.ID, in domain.Input) (*domain.Product, error)
	DeleteProduct(ctx context.Context, creds Credentials, id domain.ID) error
}

// CommerceClient talks to the remote commerce API. It never retries and keeps
// no state between calls.
type CommerceClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewCommerceClient uses httpClient as the transport; nil means http.DefaultClient.
func NewCommerceClient(baseURL string, httpClient *http.Client) *CommerceClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &CommerceClient{BaseURL: baseURL, HTTPClient: httpClient}
}

func (c *CommerceClient) ListProducts(ctx context.Context, creds Credentials) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.do(ctx, creds, http.MethodGet, "/products", nil, &products, ErrListProductsFailed); err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.Product{}
	}
	return products, nil
}

func (c *CommerceClient) CreateProduct(ctx context.Context, creds Credentials, in domain.Input) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, creds, http.MethodPost, "/products", in, &product, ErrCreateProductFailed); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CommerceClient) UpdateProduct(ctx context.Context, creds Credentials, id domain.ID, in domain.Input) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, creds, http.MethodPut, productPath(id), in, &product, ErrUpdateProductFailed); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *CommerceClient) DeleteProduct(ctx context.Context, creds Credentials, id domain.ID) error {
	return c.do(ctx, creds, http.MethodDelete, productPath(id), nil, nil, ErrDeleteProductFailed)
}

// Login needs no session; it is what creates one.
func (c *CommerceClient) Login(ctx context.Context, req sessionDomain.LoginRequest) (*sessionDomain.LoginResponse, error) {
	var resp sessionDomain.LoginResponse
	if err := c.send(ctx, "", http.MethodPost, "/users/login", req, &resp, ErrLoginFailed); err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) && (statusErr.Status == http.StatusUnauthorized || statusErr.Status == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: status %d", ErrInvalidCredentials, statusErr.Status)
		}
		return nil, err
	}
	if resp.Token == "" {
		logger.Error("CommerceClient.Login: response carried no token", nil)
		return nil, fmt.Errorf("%w: token not found in response", ErrLoginFailed)
	}
	return &resp, nil
}

// StatusError is a non-2xx answer from the commerce API. It unwraps to the
// failed operation's sentinel.
type StatusError struct {
	Op     error
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: status %d", e.Op, e.Status)
}

func (e *StatusError) Unwrap() error { return e.Op }

func productPath(id domain.ID) string {
	return "/products/" + url.PathEscape(id.String())
}

// do runs the session guard, then sends the request. Guard errors are returned unchanged.
func (c *CommerceClient) do(ctx context.Context, creds Credentials, method, path string, body, out interface{}, opErr error) error {
	token, err := creds.ValidToken(ctx)
	if err != nil {
		if !sessionDomain.IsSessionError(err) {
			logger.Error(fmt.Sprintf("CommerceClient %s %s: session lookup failed", method, path), err)
		}
		return err
	}
	return c.send(ctx, token, method, path, body, out, opErr)
}

func (c *CommerceClient) send(ctx context.Context, token, method, path string, body, out interface{}, opErr error) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			logger.Error(fmt.Sprintf("CommerceClient %s %s: marshal failed", method, path), err)
			return fmt.Errorf("%w: %v", opErr, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		logger.Error(fmt.Sprintf("CommerceClient %s %s: NewRequest failed", method, path), err)
		return fmt.Errorf("%w: %v", opErr, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("CommerceClient %s %s: HTTPClient.Do failed", method, path), err)
		return fmt.Errorf("%w: %v", opErr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Error(fmt.Sprintf("CommerceClient %s %s: commerce API returned status %d", method, path, resp.StatusCode), nil)
		return &StatusError{Op: opErr, Status: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logger.Error(fmt.Sprintf("CommerceClient %s %s: JSON decode failed", method, path), err)
		return fmt.Errorf("%w: %v", opErr, err)
	}
	return nil
}
