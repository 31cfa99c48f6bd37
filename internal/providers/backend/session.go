package backend

import (
	"context"
	"errors"
	"net/http"

	"tubetext/internal/apperr"
	"tubetext/internal/domain"
)

var (
	endpointMe       = endpoint{name: "current_user", path: "/auth/me", failure: "Session check failed"}
	endpointLogout   = endpoint{name: "logout", path: "/auth/logout", failure: "Logout failed"}
	endpointCheckout = endpoint{name: "checkout", path: "/payments/checkout", failure: "Checkout failed"}
)

const loginPath = "/auth/google/login"

type checkoutResponse struct {
	URL string `json:"url"`
}

// CurrentUser returns the signed-in user, or nil when the session is anonymous.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.do(ctx, endpointMe, http.MethodGet, nil, nil)
	if err != nil {
		var transportErr *apperr.TransportError
		if errors.As(err, &transportErr) && transportErr.Status == http.StatusUnauthorized {
			return nil, nil
		}
		return nil, err
	}
	defer res.Body.Close()

	var user domain.User
	if err := decodeJSON(endpointMe, res, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the backend session and forgets the local session cookie.
func (c *Client) Logout(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.do(ctx, endpointLogout, http.MethodPost, nil, nil)
	if err != nil {
		return err
	}
	_ = res.Body.Close()

	c.http.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:   c.cookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	}})
	return nil
}

// CheckoutURL asks the backend for a payment page to upgrade the account.
func (c *Client) CheckoutURL(ctx context.Context) (string, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.do(ctx, endpointCheckout, http.MethodPost, nil, nil)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	var out checkoutResponse
	if err := decodeJSON(endpointCheckout, res, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", invalidResponse(endpointCheckout, res.StatusCode, errors.New("empty checkout url"))
	}
	return out.URL, nil
}

// LoginURL is the browser entry point of the sign-in flow.
func (c *Client) LoginURL() string {
	return c.base + loginPath
}

// SessionToken reports the session cookie currently held for the backend.
func (c *Client) SessionToken() string {
	for _, cookie := range c.http.Jar.Cookies(c.baseURL) {
		if cookie.Name == c.cookieName {
			return cookie.Value
		}
	}
	return ""
}
