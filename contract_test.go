package modelfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type translateArgs struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type weatherOut struct {
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
}

func TestNewContract_ObjectReturn(t *testing.T) {
	c, err := NewContract[translateArgs, weatherOut]("Describe the weather")
	require.NoError(t, err)
	assert.False(t, c.OutputWrapped())

	expected, _, err := generateSchema[weatherOut]()
	require.NoError(t, err)
	assert.Equal(t, expected, c.OutputSchema())

	out, err := c.ValidateAndUnwrap(raw(`{"temperature": 21.5, "description": "mild"}`))
	require.NoError(t, err)
	assert.Equal(t, weatherOut{Temperature: 21.5, Description: "mild"}, out)
}

func TestNewContract_PrimitiveReturnIsWrapped(t *testing.T) {
	c, err := NewContract[translateArgs, string]("Translate text")
	require.NoError(t, err)
	assert.True(t, c.OutputWrapped())

	inner, _, err := generateSchema[string]()
	require.NoError(t, err)
	assert.Equal(t, wrapSchema(inner, "result"), c.OutputSchema())

	out, err := c.ValidateAndUnwrap(raw(`{"result": "hallo"}`))
	require.NoError(t, err)
	assert.Equal(t, "hallo", out)
}

func TestNewContract_ArrayReturnIsWrapped(t *testing.T) {
	c, err := NewContract[translateArgs, []string]("List synonyms")
	require.NoError(t, err)
	assert.True(t, c.OutputWrapped())

	out, err := c.ValidateAndUnwrap(raw(`{"result": ["a", "b"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out)
}

func TestNewContract_MapReturnNotWrapped(t *testing.T) {
	c, err := NewContract[translateArgs, map[string]int]("Count words")
	require.NoError(t, err)
	assert.False(t, c.OutputWrapped())

	out, err := c.ValidateAndUnwrap(raw(`{"one": 1, "two": 2}`))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"one": 1, "two": 2}, out)
}

func TestNewContract_DescriptionRequired(t *testing.T) {
	_, err := NewContract[translateArgs, string]("")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "description required", se.Reason)
}

func TestNewContract_ReturnTypeRequired(t *testing.T) {
	_, err := NewContract[translateArgs, any]("Do something")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
	var se *SignatureError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "return type required", se.Reason)
}

func TestNewContract_UndescribableArgument(t *testing.T) {
	_, err := NewContract[any, string]("Do something")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestContract_ValidateAndUnwrap_Malformed(t *testing.T) {
	c, err := NewContract[translateArgs, string]("Translate text")
	require.NoError(t, err)
	_, err = c.ValidateAndUnwrap(raw(`this is not json`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestContract_ValidateAndUnwrap_Mismatch(t *testing.T) {
	c, err := NewContract[translateArgs, weatherOut]("Describe the weather")
	require.NoError(t, err)
	_, err = c.ValidateAndUnwrap(raw(`{"temperature": "warm", "description": 3}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.NotEmpty(t, ve.Detail)
}

func TestContract_ValidateAndUnwrap_WrapperNotLeaked(t *testing.T) {
	// Round trip: a value accepted under the wrapped schema unwraps to a
	// value valid under the original type.
	c, err := NewContract[translateArgs, float64]("Estimate a price")
	require.NoError(t, err)
	out, err := c.ValidateAndUnwrap(raw(`{"result": 12.5}`))
	require.NoError(t, err)
	assert.InDelta(t, 12.5, out, 1e-9)

	// The raw (unwrapped) value is rejected.
	_, err = c.ValidateAndUnwrap(raw(`12.5`))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestContract_ParseArgs(t *testing.T) {
	c, err := NewContract[translateArgs, string]("Translate text")
	require.NoError(t, err)
	args, err := c.ParseArgs(raw(`{"text": "hello", "lang": "de"}`))
	require.NoError(t, err)
	assert.Equal(t, translateArgs{Text: "hello", Lang: "de"}, args)

	_, err = c.ParseArgs(raw(`{"text": 7}`))
	require.Error(t, err)
	assert.True(t, IsClientError(err))
}
