package json

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatSyntaxError(t *testing.T) {
	data := []byte("{\n  \"name\": \"cloudworx\",\n  \"engines\": {\n}")

	var v interface{}
	err := Unmarshal(data, &v)
	require.Error(t, err)

	err = FormatError(data, err)
	require.True(t, strings.HasPrefix(err.Error(), "syntax error at line 4"), err.Error())
}

func TestFormatTypeError(t *testing.T) {
	data := []byte("{\n  \"engines\": \"node\"\n}")

	v := struct {
		Engines struct {
			Node string `json:"node"`
		} `json:"engines"`
	}{}

	err := Unmarshal(data, &v)
	require.Error(t, err)

	err = FormatError(data, err)
	require.True(t, strings.HasPrefix(err.Error(), "expect type 'struct"), err.Error())
	require.Contains(t, err.Error(), "for 'engines' at line")
}
