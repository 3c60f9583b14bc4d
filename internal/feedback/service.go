// Package feedback implements the feedback board operations: identity sync,
// submission, vote toggling, admin status changes and the read queries behind
// the list, roadmap and stats pages.
package feedback

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrUnauthorized means the caller has no local user or lacks the role
	// the operation needs.
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("post not found")
)

// ValidationError maps a request field to the constraints it violated.
// Nothing is persisted when it is returned.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

func fieldError(field, msg string) *ValidationError {
	e := &ValidationError{}
	e.add(field, msg)
	return e
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// validPostID reports whether id can name a post row. posts.id is int4, and
// larger values would fail to encode rather than match nothing.
func validPostID(id int) bool {
	return id > 0 && id <= math.MaxInt32
}
