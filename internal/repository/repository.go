// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres) inside this directory.
// Lookups that match nothing return sql.ErrNoRows.
package repository

import (
	"context"
	"errors"
)

var (
	ErrDuplicateEmail    = errors.New("duplicate email")
	ErrDuplicateUsername = errors.New("duplicate username")
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// Transactor runs fn inside a single database transaction. Repository calls
// made with the ctx handed to fn join that transaction; the transaction is
// rolled back when fn returns an error.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
