package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"kanban-cli/internal/model"
)

// HTTPClient is a Gateway speaking the JSON API the serve command exposes.
// It lets one kanban instance use another's database as a remote backend,
// which is the deployment shape the hosted original ran in.
type HTTPClient struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// apiError is the error envelope the serve API uses.
type apiError struct {
	Error string `json:"error"`
}

func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			if resp.StatusCode == http.StatusNotFound {
				return NotFoundError{Kind: "resource", ID: apiErr.Error}
			}
			return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
		}
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *HTTPClient) GetBoards(ctx context.Context, userID string) ([]model.Board, error) {
	var out []model.Board
	err := c.do(ctx, http.MethodGet, "/api/boards?user="+url.QueryEscape(userID), nil, &out)
	return out, err
}

func (c *HTTPClient) GetTasks(ctx context.Context, boardID string) ([]model.Task, error) {
	var out []model.Task
	err := c.do(ctx, http.MethodGet, "/api/boards/"+url.PathEscape(boardID)+"/tasks", nil, &out)
	return out, err
}

func (c *HTTPClient) CreateBoard(ctx context.Context, userID string, board model.Board) (model.Board, error) {
	var out model.Board
	err := c.do(ctx, http.MethodPost, "/api/boards?user="+url.QueryEscape(userID), board, &out)
	return out, err
}

func (c *HTTPClient) UpdateBoard(ctx context.Context, boardID string, updates BoardUpdates) (model.Board, error) {
	var out model.Board
	err := c.do(ctx, http.MethodPatch, "/api/boards/"+url.PathEscape(boardID), updates, &out)
	return out, err
}

func (c *HTTPClient) DeleteBoard(ctx context.Context, boardID string) error {
	return c.do(ctx, http.MethodDelete, "/api/boards/"+url.PathEscape(boardID), nil, nil)
}

func (c *HTTPClient) CreateTask(ctx context.Context, boardID, userID string, task model.Task) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPost, "/api/boards/"+url.PathEscape(boardID)+"/tasks?user="+url.QueryEscape(userID), task, &out)
	return out, err
}

func (c *HTTPClient) UpdateTask(ctx context.Context, taskID string, updates TaskUpdates) (model.Task, error) {
	var out model.Task
	err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(taskID), updates, &out)
	return out, err
}

func (c *HTTPClient) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+url.PathEscape(taskID), nil, nil)
}
