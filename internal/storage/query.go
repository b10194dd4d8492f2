package storage

import (
	"context"

	"github.com/sbilibin2017/netflox-api/internal/models"
)

// Kind identifies a statement independently of the SQL dialect that runs it.
type Kind int

const (
	KindCreateSchema Kind = iota
	KindInsertUser
	KindSelectUserByEmail
	KindListUsers
)

func (k Kind) String() string {
	switch k {
	case KindCreateSchema:
		return "create_schema"
	case KindInsertUser:
		return "insert_user"
	case KindSelectUserByEmail:
		return "select_user_by_email"
	case KindListUsers:
		return "list_users"
	default:
		return "unknown"
	}
}

// Query is a structured statement: what to run and its positional arguments.
//
// Argument order per kind:
//   - KindInsertUser: username, email, phone (nil for NULL), password_hash
//   - KindSelectUserByEmail: email
//   - KindCreateSchema, KindListUsers: none
type Query struct {
	Kind Kind
	Args []any
}

// Result is the uniform outcome of a Query on any backend.
type Result struct {
	Rows         []models.UserDB
	LastInsertID int64
}

// Backend executes structured queries against one credential store.
type Backend interface {
	Name() string
	Execute(ctx context.Context, q Query) (*Result, error)
	Ping(ctx context.Context) error
	Close() error
}
