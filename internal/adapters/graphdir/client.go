// Package graphdir is an HTTP client for the federated identity directory.
// The wire surface mirrors the Microsoft Graph users API: object ids, a
// userPrincipalName filter, and givenName/surname profile fields.
package graphdir

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/wayfare-app/wayfare-api/internal/domain"
	"github.com/wayfare-app/wayfare-api/internal/ports/out/directory"
)

type Client struct {
	client *resty.Client
}

// New builds a directory client. token is sent as a bearer credential on
// every request; pass "" for unauthenticated test servers.
func New(baseURL, token string) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &Client{client: c}
}

type graphUser struct {
	ID                string `json:"id"`
	UserPrincipalName string `json:"userPrincipalName"`
	DisplayName       string `json:"displayName"`
	GivenName         string `json:"givenName"`
	Surname           string `json:"surname"`
}

type graphUserList struct {
	Value []graphUser `json:"value"`
}

func (c *Client) UserByID(ctx context.Context, id string) (domain.DirectoryUser, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Get("/users/{id}")
	if err != nil {
		return domain.DirectoryUser{}, fmt.Errorf("directory request: %w", err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return domain.DirectoryUser{}, directory.ErrNotFound
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.DirectoryUser{}, fmt.Errorf("directory status %d: %s", resp.StatusCode(), resp.String())
	}
	var gu graphUser
	if err := json.Unmarshal(resp.Body(), &gu); err != nil {
		return domain.DirectoryUser{}, fmt.Errorf("decode directory user: %w", err)
	}
	return toDomain(gu), nil
}

func (c *Client) UserByUsername(ctx context.Context, username string) (domain.DirectoryUser, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("$filter", fmt.Sprintf("userPrincipalName eq '%s'", username)).
		Get("/users")
	if err != nil {
		return domain.DirectoryUser{}, fmt.Errorf("directory request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return domain.DirectoryUser{}, fmt.Errorf("directory status %d: %s", resp.StatusCode(), resp.String())
	}
	var list graphUserList
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return domain.DirectoryUser{}, fmt.Errorf("decode directory users: %w", err)
	}
	if len(list.Value) == 0 {
		return domain.DirectoryUser{}, directory.ErrNotFound
	}
	return toDomain(list.Value[0]), nil
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.DirectoryUser, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/users")
	if err != nil {
		return nil, fmt.Errorf("directory request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("directory status %d: %s", resp.StatusCode(), resp.String())
	}
	var list graphUserList
	if err := json.Unmarshal(resp.Body(), &list); err != nil {
		return nil, fmt.Errorf("decode directory users: %w", err)
	}
	out := make([]domain.DirectoryUser, 0, len(list.Value))
	for _, gu := range list.Value {
		out = append(out, toDomain(gu))
	}
	return out, nil
}

func toDomain(gu graphUser) domain.DirectoryUser {
	return domain.DirectoryUser{
		ID:          gu.ID,
		Username:    gu.UserPrincipalName,
		DisplayName: gu.DisplayName,
		FirstName:   gu.GivenName,
		LastName:    gu.Surname,
	}
}
