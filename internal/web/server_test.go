package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
)

// Round-trips the whole API through gateway.HTTPClient, which is the
// consumer the routes exist for.
func TestAPIRoundTripThroughClient(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(NewHandler(gateway.NewMemory(), nil))
	defer srv.Close()
	client := gateway.NewHTTPClient(srv.URL)
	ctx := context.Background()

	board, err := client.CreateBoard(ctx, "user-1", model.Board{
		Name:    "Sprint",
		Columns: []model.Column{{Name: "Todo"}, {Name: "Doing"}},
	})
	if err != nil {
		t.Fatalf("CreateBoard: %v", err)
	}
	if board.ID == "" || board.Columns[0].ID == "" {
		t.Fatalf("ids not assigned: %+v", board)
	}

	boards, err := client.GetBoards(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetBoards: %v", err)
	}
	if len(boards) != 1 || boards[0].Name != "Sprint" {
		t.Fatalf("unexpected boards: %+v", boards)
	}

	task, err := client.CreateTask(ctx, board.ID, "user-1", model.Task{
		Title:    "Ship it",
		Status:   "Todo",
		Rank:     "h",
		Subtasks: []model.Subtask{{Title: "write"}, {Title: "review"}},
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.ID == "" {
		t.Fatalf("task id not assigned")
	}

	status := "Doing"
	updated, err := client.UpdateTask(ctx, task.ID, gateway.TaskUpdates{Status: &status})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.Status != "Doing" || updated.Title != "Ship it" {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	tasks, err := client.GetTasks(ctx, board.ID)
	if err != nil {
		t.Fatalf("GetTasks: %v", err)
	}
	if len(tasks) != 1 || len(tasks[0].Subtasks) != 2 {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}

	name := "Sprint 2"
	if _, err := client.UpdateBoard(ctx, board.ID, gateway.BoardUpdates{Name: &name}); err != nil {
		t.Fatalf("UpdateBoard: %v", err)
	}

	if err := client.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := client.DeleteBoard(ctx, board.ID); err != nil {
		t.Fatalf("DeleteBoard: %v", err)
	}
	boards, err = client.GetBoards(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetBoards after delete: %v", err)
	}
	if len(boards) != 0 {
		t.Fatalf("board survived delete: %+v", boards)
	}
}

func TestAPINotFoundMapsToTypedError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(NewHandler(gateway.NewMemory(), nil))
	defer srv.Close()
	client := gateway.NewHTTPClient(srv.URL)

	var nf gateway.NotFoundError
	if _, err := client.UpdateTask(context.Background(), "nope", gateway.TaskUpdates{}); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError over the wire; got %v", err)
	}
	if err := client.DeleteBoard(context.Background(), "nope"); !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError over the wire; got %v", err)
	}
}

func TestAPIStatusCodes(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(NewHandler(gateway.NewMemory(), nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status: %d", resp.StatusCode)
	}

	// Malformed body is a 400, not a 500.
	resp, err = http.Post(srv.URL+"/api/boards", "application/json", nil)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("malformed body status: %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/tasks/nope", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing task status: %d", resp.StatusCode)
	}
}

func TestAPICreateBoardValidation(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(NewHandler(gateway.NewMemory(), nil))
	defer srv.Close()

	post := func(body string) int {
		t.Helper()
		resp, err := http.Post(srv.URL+"/api/boards", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("post: %v", err)
		}
		resp.Body.Close()
		return resp.StatusCode
	}

	// Boards the store refuses to create locally must be refused here
	// too; a zero-column board would crash every surface built on the
	// first-column default.
	for _, body := range []string{
		`{"name":""}`,
		`{"name":"Bare"}`,
		`{"name":"Bare","columns":[{"name":"  "}]}`,
		`{"name":"Bare","columns":[{"name":"Todo"},{"name":"Todo"}]}`,
	} {
		if code := post(body); code != http.StatusBadRequest {
			t.Fatalf("body %s: status %d, want 400", body, code)
		}
	}

	if code := post(`{"name":"OK","columns":[{"name":"Todo"}]}`); code != http.StatusCreated {
		t.Fatalf("valid board status: %d, want 201", code)
	}
}
