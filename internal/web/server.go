// Package web exposes the persistence gateway as a JSON API. The serve
// command mounts it so other kanban instances (or anything that speaks
// JSON) can use this machine's database as their backend; the
// gateway.HTTPClient on the other end speaks exactly these routes.
package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"kanban-cli/internal/gateway"
	"kanban-cli/internal/model"
	"kanban-cli/internal/store"
)

type Server struct {
	gw     gateway.Gateway
	logger *log.Logger
}

// NewHandler builds the API handler. A nil logger silences request logs.
func NewHandler(gw gateway.Gateway, logger *log.Logger) http.Handler {
	s := &Server{gw: gw, logger: logger}

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/boards", s.handleListBoards).Methods(http.MethodGet)
	api.HandleFunc("/boards", s.handleCreateBoard).Methods(http.MethodPost)
	api.HandleFunc("/boards/{boardId}", s.handleUpdateBoard).Methods(http.MethodPatch)
	api.HandleFunc("/boards/{boardId}", s.handleDeleteBoard).Methods(http.MethodDelete)
	api.HandleFunc("/boards/{boardId}/tasks", s.handleListTasks).Methods(http.MethodGet)
	api.HandleFunc("/boards/{boardId}/tasks", s.handleCreateTask).Methods(http.MethodPost)
	api.HandleFunc("/tasks/{taskId}", s.handleUpdateTask).Methods(http.MethodPatch)
	api.HandleFunc("/tasks/{taskId}", s.handleDeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete,
		},
		AllowedHeaders: []string{"Content-Type"},
	})
	return c.Handler(s.logRequests(r))
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.logger != nil {
			s.logger.Printf("%s %s", r.Method, r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// userOf reads the user scope from the query string. The API is
// single-tenant by default; "local" matches the CLI's default user.
func userOf(r *http.Request) string {
	if u := r.URL.Query().Get("user"); u != "" {
		return u
	}
	return "local"
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	boards, err := s.gw.GetBoards(r.Context(), userOf(r))
	if err != nil {
		writeError(w, err)
		return
	}
	if boards == nil {
		boards = []model.Board{}
	}
	writeJSON(w, http.StatusOK, boards)
}

func (s *Server) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	var board model.Board
	if !decode(w, r, &board) {
		return
	}
	if err := validateNewBoard(&board); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	created, err := s.gw.CreateBoard(r.Context(), userOf(r), board)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	var updates gateway.BoardUpdates
	if !decode(w, r, &updates) {
		return
	}
	updated, err := s.gw.UpdateBoard(r.Context(), mux.Vars(r)["boardId"], updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	if err := s.gw.DeleteBoard(r.Context(), mux.Vars(r)["boardId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.gw.GetTasks(r.Context(), mux.Vars(r)["boardId"])
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var task model.Task
	if !decode(w, r, &task) {
		return
	}
	created, err := s.gw.CreateTask(r.Context(), mux.Vars(r)["boardId"], userOf(r), task)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var updates gateway.TaskUpdates
	if !decode(w, r, &updates) {
		return
	}
	updated, err := s.gw.UpdateTask(r.Context(), mux.Vars(r)["taskId"], updates)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.gw.DeleteTask(r.Context(), mux.Vars(r)["taskId"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validateNewBoard applies the same rules the store applies to boards
// created locally. Remote clients must not be able to introduce boards
// the rest of the tool cannot operate on, zero-column boards above all.
func validateNewBoard(b *model.Board) error {
	b.Name = strings.TrimSpace(b.Name)
	if b.Name == "" {
		return store.ErrEmptyBoardName
	}
	seen := map[string]bool{}
	cols := b.Columns[:0]
	for _, c := range b.Columns {
		c.Name = strings.TrimSpace(c.Name)
		if c.Name == "" {
			continue
		}
		if seen[c.Name] {
			return store.ErrDuplicateColumn
		}
		seen[c.Name] = true
		cols = append(cols, c)
	}
	if len(cols) == 0 {
		return store.ErrNoColumns
	}
	b.Columns = cols
	return nil
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	var nf gateway.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
