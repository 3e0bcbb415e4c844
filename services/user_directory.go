package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// UserDirectory is the synchronous "fetch user by id" lookup against the user
// service, used by notification rendering. It is deliberately read-only; all
// state coordination between services goes through the event bus.
type UserDirectory struct {
	BaseURL string
	Client  *http.Client
}

type DirectoryUser struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func NewUserDirectory(baseURL string) *UserDirectory {
	return &UserDirectory{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (d *UserDirectory) FetchUser(ctx context.Context, id uint) (*DirectoryUser, error) {
	url := fmt.Sprintf("%s/api/v1/users/%d", d.BaseURL, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: user %d", ErrNotFound, id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user lookup returned status %d", resp.StatusCode)
	}

	var user DirectoryUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}
