// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package apperr

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIs_CodeAndCategory(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
		want bool
	}{
		{"exact code", New(NotInitialized, "x"), NotInitialized, true},
		{"category match", New(NotInitialized, "x"), NotFound, true},
		{"different category", New(NotInitialized, "x"), AlreadyExists, false},
		{"category does not match specific", New(NotFound, "x"), NotInitialized, false},
		{"wrapped by fmt", fmt.Errorf("loading: %w", New(MissingColumns, "x")), InvalidInput, true},
		{"inner coded error", Wrap(New(TemplateNotFound, "x"), Internal, "outer"), NotFound, true},
		{"plain error", errors.New("boom"), NotFound, false},
		{"nil", nil, NotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Is(tt.err, tt.code))
		})
	}
}

func TestError_Message(t *testing.T) {
	err := Wrapf(fs.ErrNotExist, NotFound, "reading %s", "a.yaml")
	assert.Equal(t, "[NOT_FOUND] reading a.yaml: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)

	plain := Newf(InvalidInput, "bad value %d", 3)
	assert.Equal(t, "[INVALID_INPUT] bad value 3", plain.Error())
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, Internal, "x"))
	assert.Nil(t, Wrapf(nil, Internal, "x %d", 1))
}

func TestDetails(t *testing.T) {
	err := New(MissingColumns, "missing").WithDetail("columns", []string{"doi"})
	wrapped := fmt.Errorf("validate: %w", err)

	require.Equal(t, MissingColumns, CodeOf(wrapped))
	assert.Equal(t, []string{"doi"}, DetailsOf(wrapped)["columns"])
	assert.Equal(t, Unknown, CodeOf(errors.New("plain")))
	assert.Nil(t, DetailsOf(errors.New("plain")))
}
