package counter_test

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/keboola/go-http-client/pkg/httpclient/counter"
)

type testCase struct {
	name             string
	content          string
	readErr          error
	closeErr         error
	expectedReadErr  string
	expectedCloseErr string
	expectedHookErr  string
}

type testReader struct {
	content  io.Reader
	readErr  error
	closeErr error
}

func (r *testReader) Read(p []byte) (n int, err error) {
	n, err = r.content.Read(p)
	if err == nil {
		err = r.readErr
	}
	return n, err
}

func (r *testReader) Close() error {
	return r.closeErr
}

func TestReadCloser(t *testing.T) {
	t.Parallel()

	cases := []testCase{
		{
			name:    "empty",
			content: "",
		},
		{
			name:    "no error",
			content: "abcdef",
		},
		{
			name:             "close error",
			content:          "abcdef",
			closeErr:         errors.New("close error"),
			expectedCloseErr: "close error",
			expectedHookErr:  "close error",
		},
		{
			name:            "read error",
			content:         "abcdef",
			readErr:         errors.New("read error"),
			expectedReadErr: "read error",
			expectedHookErr: "read error",
		},
		{
			// The read error has priority in the onClose callback
			name:             "read and close error",
			content:          "abcdef",
			readErr:          errors.New("read error"),
			closeErr:         errors.New("close error"),
			expectedReadErr:  "read error",
			expectedCloseErr: "close error",
			expectedHookErr:  "read error",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var hookBytes int64
			var hookErr error
			hookCalled := false
			r := counter.NewReadCloser(
				&testReader{content: strings.NewReader(tc.content), readErr: tc.readErr, closeErr: tc.closeErr},
				func(bytes int64, err error) {
					hookCalled = true
					hookBytes = bytes
					hookErr = err
				},
			)

			// Read
			out, err := io.ReadAll(r)
			assert.Equal(t, tc.content, string(out))
			assert.Equal(t, int64(len(tc.content)), r.Bytes())
			if tc.expectedReadErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.expectedReadErr)
			}

			// Close
			err = r.Close()
			if tc.expectedCloseErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tc.expectedCloseErr)
			}

			// The hook receives the total bytes and the most useful error
			assert.True(t, hookCalled)
			assert.Equal(t, int64(len(tc.content)), hookBytes)
			if tc.expectedHookErr == "" {
				assert.NoError(t, hookErr)
			} else {
				assert.EqualError(t, hookErr, tc.expectedHookErr)
			}
		})
	}
}

func TestReadCloserNilHook(t *testing.T) {
	t.Parallel()
	r := counter.NewReadCloser(io.NopCloser(strings.NewReader("abc")), nil)
	out, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	assert.NoError(t, r.Close())
}
