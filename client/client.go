// Package client là lớp đồng bộ phía client của Task API: giữ session token,
// gọi các endpoint và chuẩn hóa dữ liệu task trước khi trả về giao diện.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/biosecret/go-tasks/models"
	"github.com/valyala/fasthttp"
)

const defaultTimeout = 10 * time.Second

// Client gọi Task API qua fasthttp
type Client struct {
	baseURL string
	http    *fasthttp.Client
	tokens  TokenStore
	timeout time.Duration
}

// Option tùy chỉnh Client
type Option func(*Client)

// WithTimeout đặt timeout cho các request không có deadline trong context
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithDial thay hàm kết nối, ví dụ để dùng listener trong bộ nhớ
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(c *Client) { c.http.Dial = dial }
}

// New tạo client cho server tại baseURL, ví dụ "http://localhost:3000/api"
func New(baseURL string, tokens TokenStore, opts ...Option) *Client {
	if tokens == nil {
		tokens = &MemoryTokenStore{}
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &fasthttp.Client{
			Name:                     "go-tasks-client",
			NoDefaultUserAgentHeader: true,
		},
		tokens:  tokens,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register tạo tài khoản mới; không đăng nhập
func (c *Client) Register(ctx context.Context, email, password, username string) (models.PublicUser, error) {
	in := models.RegisterInput{Email: email, Password: password, DisplayName: username}
	var out struct {
		User models.PublicUser `json:"user"`
	}
	err := c.do(ctx, fasthttp.MethodPost, "/auth/register", false, in, &out, "registration failed")
	return out.User, err
}

// Login đăng nhập và lưu token vào TokenStore
func (c *Client) Login(ctx context.Context, email, password string) (models.PublicUser, error) {
	in := models.LoginInput{Email: email, Password: password}
	var out struct {
		Token string            `json:"token"`
		User  models.PublicUser `json:"user"`
	}
	if err := c.do(ctx, fasthttp.MethodPost, "/auth/login", false, in, &out, "login failed"); err != nil {
		return models.PublicUser{}, err
	}
	if out.Token == "" {
		return models.PublicUser{}, errors.New("login failed: server returned no token")
	}
	if err := c.tokens.Save(out.Token); err != nil {
		return models.PublicUser{}, fmt.Errorf("save token: %w", err)
	}
	return out.User, nil
}

// Logout chỉ xóa token phía client; server không thu hồi token
func (c *Client) Logout() error {
	return c.tokens.Clear()
}

// LoggedIn trả về false khi chưa có token
func (c *Client) LoggedIn() bool {
	token, err := c.tokens.Load()
	return err == nil && token != ""
}

func (c *Client) CurrentUser(ctx context.Context) (models.PublicUser, error) {
	var out models.PublicUser
	err := c.do(ctx, fasthttp.MethodGet, "/auth/current", true, nil, &out, "could not load user profile")
	return out, err
}

// UpdateProfile chỉ gửi các trường khác nil
func (c *Client) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (models.PublicUser, error) {
	var out models.PublicUser
	err := c.do(ctx, fasthttp.MethodPut, "/auth/update", true, patch, &out, "could not update profile")
	return out, err
}

// ListTasks trả về task đã chuẩn hóa giá trị cũ và đã sắp xếp
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	if err := c.do(ctx, fasthttp.MethodGet, "/tasks", true, nil, &out, "could not load tasks"); err != nil {
		return nil, err
	}
	tasks := make([]models.Task, 0, len(out))
	for _, t := range out {
		tasks = append(tasks, t.Normalize())
	}
	models.SortTasks(tasks)
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, in models.TaskInput) (models.Task, error) {
	var out models.Task
	if err := c.do(ctx, fasthttp.MethodPost, "/tasks", true, in, &out, "could not create task"); err != nil {
		return models.Task{}, err
	}
	return out.Normalize(), nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var out models.Task
	if err := c.do(ctx, fasthttp.MethodPut, "/tasks/"+url.PathEscape(id), true, patch, &out, "could not update task"); err != nil {
		return models.Task{}, err
	}
	return out.Normalize(), nil
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, fasthttp.MethodDelete, "/tasks/"+url.PathEscape(id), true, nil, nil, "could not delete task")
}

func (c *Client) do(ctx context.Context, method, path string, auth bool, in, out any, fallback string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	if auth {
		token, err := c.tokens.Load()
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}
		if token == "" {
			return ErrNotLoggedIn
		}
		req.Header.Set(fasthttp.HeaderAuthorization, "Bearer "+token)
	}

	if in != nil {
		body, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(body)
	}

	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		apiErr := decodeError(status, resp.Body(), fallback)
		// Token hết hạn hoặc không hợp lệ: xóa để giao diện quay về màn hình đăng nhập
		if auth && apiErr.Unauthorized() {
			_ = c.tokens.Clear()
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s: decode response: %w", fallback, err)
	}
	return nil
}
