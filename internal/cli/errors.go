package cli

import "fmt"

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type unknownColumnError struct {
	board  string
	column string
}

func (e unknownColumnError) Error() string {
	return fmt.Sprintf("board %s has no column named %q", e.board, e.column)
}

func errUnknownColumn(board, column string) error {
	return unknownColumnError{board: board, column: column}
}
