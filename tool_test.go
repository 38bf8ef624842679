package modelfn

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTool_ObjectArgument(t *testing.T) {
	type args struct {
		A int `json:"a"`
		B int `json:"b"`
	}
	type sum struct {
		Sum int `json:"sum"`
	}
	tool, err := NewTool("add", "Add two numbers", func(_ context.Context, a args) (sum, error) {
		return sum{Sum: a.A + a.B}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "add", tool.Name())
	params := tool.Parameters()
	require.NotNil(t, params)
	assert.Equal(t, "object", params["type"])

	content, err := tool.Call(context.Background(), raw(`{"a": 3, "b": 5}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"sum": 8}`, content)
}

func TestNewTool_WrappedStringArgument(t *testing.T) {
	tool, err := NewTool("reverse", "Reverse a string", func(_ context.Context, s string) (string, error) {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes), nil
	})
	require.NoError(t, err)

	params := tool.Parameters()
	require.NotNil(t, params)
	assert.Equal(t, "object", params["type"])
	props := params["properties"].(map[string]any)
	assert.Contains(t, props, "input")

	content, err := tool.Call(context.Background(), raw(`{"input": "hello"}`))
	require.NoError(t, err)
	assert.Equal(t, "olleh", content)
}

func TestNewTool_WrappedArgumentRejectsBareValue(t *testing.T) {
	tool, err := NewTool("shout", "Uppercase a string", func(_ context.Context, s string) (string, error) {
		return strings.ToUpper(s), nil
	})
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), raw(`"hello"`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
}

func TestNewTool_NumberResultIsDecimalText(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	tool, err := NewTool("square", "Square a number", func(_ context.Context, a args) (int, error) {
		return a.N * a.N, nil
	})
	require.NoError(t, err)
	content, err := tool.Call(context.Background(), raw(`{"n": 12}`))
	require.NoError(t, err)
	assert.Equal(t, "144", content)
}

func TestNewTool_DescriptionRequired(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	_, err := NewTool("square", "", func(_ context.Context, a args) (int, error) {
		return a.N, nil
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestNewTool_ValidatesBeforeCalling(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	called := false
	tool, err := NewTool("double", "Double a number", func(_ context.Context, a args) (int, error) {
		called = true
		return a.N, nil
	})
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), raw(`{"n": "twelve"}`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
	assert.False(t, called)
}

func TestNewTool0_ZeroArgument(t *testing.T) {
	type report struct {
		Temperature float64 `json:"temperature"`
		Description string  `json:"description"`
	}
	tool, err := NewTool0("temperature", "Look up the current temperature", func(_ context.Context) (report, error) {
		return report{Temperature: -3.5, Description: "snowing"}, nil
	})
	require.NoError(t, err)
	assert.Nil(t, tool.Parameters())

	content, err := tool.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"temperature": -3.5, "description": "snowing"}`, content)
}

func TestNewTool_HandlerErrorWrapped(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	tool, err := NewTool("fail", "Always fails", func(_ context.Context, _ args) (int, error) {
		return 0, assert.AnError
	})
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), raw(`{"n": 1}`))
	require.Error(t, err)
	assert.True(t, IsSystemError(err))
}

func TestNewTool_ClientErrorPassesThrough(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	tool, err := NewTool("pick", "Pick a value", func(_ context.Context, _ args) (int, error) {
		return 0, &ClientError{Reason: "n out of range"}
	})
	require.NoError(t, err)
	_, err = tool.Call(context.Background(), raw(`{"n": 99}`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
}

func TestNewTool_Metadata(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	tool, err := NewTool("meta", "Metadata carrier", func(_ context.Context, a args) (int, error) {
		return a.N, nil
	}, WithTimeout(2*time.Second), WithTags("math"), WithVersion("1.1.0"), WithDangerous())
	require.NoError(t, err)
	tm, ok := tool.(ToolMetadata)
	require.True(t, ok)
	assert.Equal(t, 2*time.Second, tm.Timeout())
	assert.Equal(t, []string{"math"}, tm.Tags())
	assert.Equal(t, "1.1.0", tm.Version())
	assert.True(t, tm.IsDangerous())
}

func TestNewTool_ResultSchemaWrapping(t *testing.T) {
	type args struct {
		N int `json:"n"`
	}
	type out struct {
		V int `json:"v"`
	}
	objTool, err := NewTool("obj", "Object result", func(_ context.Context, a args) (out, error) {
		return out{V: a.N}, nil
	})
	require.NoError(t, err)
	rs := objTool.(ResultDescriber).ResultSchema()
	assert.Equal(t, "object", rs["type"])
	assert.NotContains(t, rs["properties"], "result")

	strTool, err := NewTool("str", "String result", func(_ context.Context, _ args) (string, error) {
		return "", nil
	})
	require.NoError(t, err)
	rs = strTool.(ResultDescriber).ResultSchema()
	props := rs["properties"].(map[string]any)
	assert.Contains(t, props, "result")
}

func TestStringifyResult(t *testing.T) {
	type payload struct {
		OK bool `json:"ok"`
	}
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string untouched", "olleh", "olleh"},
		{"int decimal", 42, "42"},
		{"negative int", -7, "-7"},
		{"uint decimal", uint8(255), "255"},
		{"float decimal", 2.5, "2.5"},
		{"float32 decimal", float32(3.14), "3.14"},
		{"bool json", true, "true"},
		{"struct json", payload{OK: true}, `{"ok":true}`},
		{"slice json", []int{1, 2}, `[1,2]`},
		{"nil", nil, "null"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := stringifyResult(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
