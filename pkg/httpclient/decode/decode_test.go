package decode_test

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keboola/go-http-client/pkg/httpclient/decode"
)

func TestDecodePlain(t *testing.T) {
	t.Parallel()

	for _, encoding := range []string{"", "identity", "unknown"} {
		body := io.NopCloser(strings.NewReader("plain content"))
		out, err := decode.Decode(body, encoding)
		require.NoError(t, err)
		content, err := io.ReadAll(out)
		assert.NoError(t, err)
		assert.Equal(t, "plain content", string(content))
	}
}

func TestDecodeGzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	_, err := w.Write([]byte("gzip content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := decode.Decode(io.NopCloser(&buf), "gzip")
	require.NoError(t, err)
	content, err := io.ReadAll(out)
	assert.NoError(t, err)
	assert.Equal(t, "gzip content", string(content))
}

func TestDecodeGzipInvalid(t *testing.T) {
	t.Parallel()
	_, err := decode.Decode(io.NopCloser(strings.NewReader("not gzip")), "gzip")
	assert.ErrorContains(t, err, "cannot decode gzip")
}

func TestDecodeBrotli(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := brotli.NewWriter(&buf)
	_, err := w.Write([]byte("brotli content"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	out, err := decode.Decode(io.NopCloser(&buf), "br")
	require.NoError(t, err)
	content, err := io.ReadAll(out)
	assert.NoError(t, err)
	assert.Equal(t, "brotli content", string(content))
}
