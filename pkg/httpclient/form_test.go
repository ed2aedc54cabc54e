package httpclient_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/keboola/go-http-client/pkg/httpclient"
)

func TestToFormBody(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"string": "value",
		"int":    123,
		"float":  4.5,
		"bool":   true,
		"slice":  []any{"a", "b"},
		"map":    map[string]any{"x": 1, "y": "z"},
	}

	assert.Equal(t, map[string]string{
		"string":   "value",
		"int":      "123",
		"float":    "4.5",
		"bool":     "true",
		"slice[0]": "a",
		"slice[1]": "b",
		"map[x]":   "1",
		"map[y]":   "z",
	}, ToFormBody(in))
}

func TestToFormBodyEmpty(t *testing.T) {
	t.Parallel()
	assert.Equal(t, map[string]string{}, ToFormBody(map[string]any{}))
}

func TestToFormBodyUncastableValue(t *testing.T) {
	t.Parallel()
	assert.Panics(t, func() {
		ToFormBody(map[string]any{"ch": make(chan int)})
	})
}
