package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeNotFound, "field missing")
	require.NotNil(t, err)
	assert.Equal(t, ErrorTypeNotFound, err.Type)
	assert.Equal(t, "not_found: field missing", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeRange, "index %d out of range [0, %d)", 12, 10)
	assert.Equal(t, "range: index 12 out of range [0, 10)", err.Error())
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, ErrorTypeUserFunction, "transform failed")
	require.NotNil(t, err)
	assert.Equal(t, "user_function: transform failed: boom", err.Error())
	assert.Equal(t, cause, stderrors.Unwrap(err))

	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "ignored"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeSchema, "bad column")
	outer := Wrap(inner, ErrorTypeInternal, "store rejected write")
	assert.Equal(t, inner.Stack, outer.Stack)
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeEmptyDataset, "no rows")
	assert.True(t, IsType(err, ErrorTypeEmptyDataset))
	assert.False(t, IsType(err, ErrorTypeSchema))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeEmptyDataset))
	assert.False(t, IsType(nil, ErrorTypeEmptyDataset))

	// Type checks see through foreign wrapping.
	wrapped := fmt.Errorf("outer: %w", err)
	assert.True(t, IsType(wrapped, ErrorTypeEmptyDataset))
}

func TestRowIndex(t *testing.T) {
	err := New(ErrorTypeUserFunction, "transform failed").WithRow(7)
	idx, ok := RowIndex(err)
	require.True(t, ok)
	assert.Equal(t, 7, idx)

	_, ok = RowIndex(New(ErrorTypeInternal, "no row recorded"))
	assert.False(t, ok)

	_, ok = RowIndex(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestRowIndexThroughWrapChain(t *testing.T) {
	inner := New(ErrorTypeUserFunction, "transform failed").WithRow(42)
	outer := Wrap(inner, ErrorTypeInternal, "apply aborted")

	idx, ok := RowIndex(outer)
	require.True(t, ok)
	assert.Equal(t, 42, idx)
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeSchema, "length mismatch").
		WithDetail("field", "tokens").
		WithDetail("expected", 10)
	assert.Equal(t, "tokens", err.Details["field"])
	assert.Equal(t, 10, err.Details["expected"])
}
