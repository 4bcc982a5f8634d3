package apperror

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := DataIntegrity("food", "abc", "negative protein")
	wrapped := fmt.Errorf("resolve recipe: %w", err)

	assert.ErrorIs(t, wrapped, ErrDataIntegrity)
	assert.NotErrorIs(t, wrapped, ErrReference)
	assert.Equal(t, KindDataIntegrity, KindOf(wrapped))
}

func TestReferenceErrorMessage(t *testing.T) {
	err := Reference("recipe", "42")
	assert.Equal(t, "reference: unresolved reference (recipe 42)", err.Error())
	assert.ErrorIs(t, err, ErrReference)
}

func TestIOUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := IO(cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, KindIO, KindOf(err))
	assert.Equal(t, KindInternal, KindOf(cause))
}

func TestLogFieldsIncludeContext(t *testing.T) {
	err := Validation("bad date").WithContext("field", "date")
	fields := err.LogFields()
	assert.Contains(t, fields, "field")
	assert.Contains(t, fields, "date")
}

func TestHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	h := NewHandler(logger)

	h.Handle(context.Background(), NotFound("meal", "1"))
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	h.Handle(context.Background(), IO(errors.New("boom")))
	assert.Contains(t, buf.String(), "level=ERROR")

	buf.Reset()
	h.Handle(context.Background(), nil)
	assert.Empty(t, buf.String())
}
