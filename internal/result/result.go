// Package result provides the success/failure envelope returned to UI collaborators.
package result

import (
	"github.com/at-ishikawa/elearn/internal/apperr"
)

// Result is either Ok(Data) or Err(Kind, Error).
type Result[T any] struct {
	Success bool        `json:"success"`
	Data    T           `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    apperr.Kind `json:"kind,omitempty"`
}

func Ok[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

func Err[T any](err error) Result[T] {
	message := err.Error()
	if e, ok := err.(*apperr.Error); ok && e.Message != "" {
		message = e.Message
	}
	return Result[T]{Error: message, Kind: apperr.KindOf(err)}
}

// From converts a Go (value, error) pair into a Result.
func From[T any](data T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(data)
}
