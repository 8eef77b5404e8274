// Package client is a typed HTTP client for the task manager API. It reuses
// the server's DTOs so request and response shapes cannot drift.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"taskmanager/internal/dto"
)

// Error is a non-2xx answer from the API.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client talks to one API base URL. The bearer token is set by Login and may
// also be restored with SetToken.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying http.Client (tests, custom transports).
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// ── Identity ─────────────────────────────────────────────────────────────────

func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	return &out, c.do(ctx, http.MethodPost, "/register", req, &out)
}

// Login stores the returned token on the client.
func (c *Client) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/login", dto.LoginRequest{Username: username, Password: password}, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Logout revokes the token server side and forgets it locally.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/logout", nil, nil)
	c.SetToken("")
	return err
}

// ── Personal tasks ───────────────────────────────────────────────────────────

func (c *Client) ListTasks(ctx context.Context) ([]dto.TaskResponse, error) {
	var out []dto.TaskResponse
	return out, c.do(ctx, http.MethodGet, "/tasks", nil, &out)
}

func (c *Client) CreateTask(ctx context.Context, req dto.CreateTaskRequest) (*dto.CreateTaskResponse, error) {
	var out dto.CreateTaskResponse
	return &out, c.do(ctx, http.MethodPost, "/tasks", req, &out)
}

func (c *Client) UpdateTask(ctx context.Context, taskID string, req dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	var out dto.TaskResponse
	return &out, c.do(ctx, http.MethodPut, "/tasks/"+url.PathEscape(taskID), req, &out)
}

func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+url.PathEscape(taskID), nil, nil)
}

// ── Groups ───────────────────────────────────────────────────────────────────

func (c *Client) ListGroups(ctx context.Context) ([]dto.GroupResponse, error) {
	var out []dto.GroupResponse
	return out, c.do(ctx, http.MethodGet, "/groups", nil, &out)
}

func (c *Client) GetGroup(ctx context.Context, groupID string) (*dto.GroupResponse, error) {
	var out dto.GroupResponse
	return &out, c.do(ctx, http.MethodGet, groupPath(groupID), nil, &out)
}

func (c *Client) CreateGroup(ctx context.Context, req dto.CreateGroupRequest) (*dto.CreateGroupResponse, error) {
	var out dto.CreateGroupResponse
	return &out, c.do(ctx, http.MethodPost, "/groups", req, &out)
}

func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID), nil, nil)
}

func (c *Client) GroupMembers(ctx context.Context, groupID string) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	return out, c.do(ctx, http.MethodGet, groupPath(groupID)+"/users", nil, &out)
}

func (c *Client) AddMember(ctx context.Context, groupID, userID string) error {
	return c.do(ctx, http.MethodPost, groupPath(groupID)+"/users", dto.AddMemberRequest{UserID: userID}, nil)
}

func (c *Client) RemoveMember(ctx context.Context, groupID, userID string) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID)+"/users/"+url.PathEscape(userID), nil, nil)
}

// ── Group tasks ──────────────────────────────────────────────────────────────

func (c *Client) ListGroupTasks(ctx context.Context, groupID string) ([]dto.GroupTaskResponse, error) {
	var out []dto.GroupTaskResponse
	return out, c.do(ctx, http.MethodGet, groupPath(groupID)+"/tasks", nil, &out)
}

func (c *Client) AssignGroupTask(ctx context.Context, groupID string, req dto.AssignGroupTaskRequest) (*dto.AssignGroupTaskResponse, error) {
	var out dto.AssignGroupTaskResponse
	return &out, c.do(ctx, http.MethodPost, groupPath(groupID)+"/tasks", req, &out)
}

func (c *Client) UpdateGroupTaskStatus(ctx context.Context, groupID, taskID string, req dto.UpdateGroupTaskStatusRequest) (*dto.GroupTaskResponse, error) {
	var out dto.GroupTaskResponse
	return &out, c.do(ctx, http.MethodPatch, groupPath(groupID)+"/tasks/"+url.PathEscape(taskID), req, &out)
}

func (c *Client) DeleteGroupTask(ctx context.Context, groupID, taskID string) error {
	return c.do(ctx, http.MethodDelete, groupPath(groupID)+"/tasks/"+url.PathEscape(taskID), nil, nil)
}

func (c *Client) GroupTaskStats(ctx context.Context, groupID string) (*dto.GroupTaskStats, error) {
	var out dto.GroupTaskStats
	return &out, c.do(ctx, http.MethodGet, groupPath(groupID)+"/tasks/stats", nil, &out)
}

// GroupReport returns the PDF bytes of the group report.
func (c *Client) GroupReport(ctx context.Context, groupID string) ([]byte, error) {
	resp, err := c.send(ctx, http.MethodGet, groupPath(groupID)+"/report", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

// ── Users (Admin, Master) ────────────────────────────────────────────────────

func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	return out, c.do(ctx, http.MethodGet, "/users", nil, &out)
}

func (c *Client) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	var out dto.UserResponse
	return &out, c.do(ctx, http.MethodPut, "/users/"+url.PathEscape(userID), req, &out)
}

func (c *Client) DeleteUser(ctx context.Context, userID string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(userID), nil, nil)
}

// ── Transport ────────────────────────────────────────────────────────────────

func groupPath(groupID string) string { return "/groups/" + url.PathEscape(groupID) }

// do sends body as JSON and decodes a 2xx answer into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	apiErr := &Error{Status: resp.StatusCode}
	var envelope struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Error
		apiErr.Fields = envelope.Fields
	}
	return apiErr
}
