package modelfn

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToolFromFunc_WithContextAndArg(t *testing.T) {
	type args struct {
		Name string `json:"name"`
	}
	tool, err := NewToolFromFunc("greet", "Greet someone", func(_ context.Context, a args) (string, error) {
		return "hello " + a.Name, nil
	})
	require.NoError(t, err)
	content, err := tool.Call(context.Background(), raw(`{"name": "ada"}`))
	require.NoError(t, err)
	assert.Equal(t, "hello ada", content)
}

func TestNewToolFromFunc_NoContext(t *testing.T) {
	tool, err := NewToolFromFunc("upper", "Uppercase a string", func(s string) string {
		return strings.ToUpper(s)
	})
	require.NoError(t, err)
	content, err := tool.Call(context.Background(), raw(`{"input": "abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "ABC", content)
}

func TestNewToolFromFunc_ZeroArgument(t *testing.T) {
	tool, err := NewToolFromFunc("answer", "The answer", func(_ context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Nil(t, tool.Parameters())
	content, err := tool.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "42", content)
}

func TestNewToolFromFunc_SingleArgumentRequired(t *testing.T) {
	_, err := NewToolFromFunc("bad", "Two arguments", func(_ context.Context, a, b string) (string, error) {
		return a + b, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "single argument required", se.Reason)
}

func TestNewToolFromFunc_ReturnTypeRequired(t *testing.T) {
	tests := []struct {
		name string
		fn   any
	}{
		{"error only", func(_ context.Context, s string) error { return nil }},
		{"no returns", func(s string) {}},
		{"interface return", func(s string) (any, error) { return s, nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewToolFromFunc("bad", "No usable return", tt.fn)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSignature)
			var se *SignatureError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, "return type required", se.Reason)
		})
	}
}

func TestNewToolFromFunc_NotAFunction(t *testing.T) {
	_, err := NewToolFromFunc("bad", "Not callable", 42)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNewToolFromFunc_DescriptionRequired(t *testing.T) {
	_, err := NewToolFromFunc("bad", "", func(s string) string { return s })
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "description required", se.Reason)
}

func TestNewToolFromFunc_HandlerError(t *testing.T) {
	tool, err := NewToolFromFunc("fail", "Always fails", func(_ context.Context, s string) (string, error) {
		return "", assert.AnError
	})
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), raw(`{"input": "x"}`))
	require.Error(t, err)
	assert.True(t, IsSystemError(err))
}
