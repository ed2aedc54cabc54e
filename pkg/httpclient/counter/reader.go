// Package counter provides an io.ReadCloser wrapper counting the bytes read through it.
package counter

import (
	"errors"
	"io"
)

// OnClose is called when the wrapped reader is closed, with the total bytes read.
type OnClose func(bytes int64, err error)

// ReadCloser wraps a request/response body and counts bytes read from it.
type ReadCloser struct {
	wrapped io.ReadCloser
	onClose OnClose
	bytes   int64
	readErr error
}

func NewReadCloser(wrapped io.ReadCloser, onClose OnClose) *ReadCloser {
	return &ReadCloser{wrapped: wrapped, onClose: onClose}
}

// Bytes returns the number of bytes read so far.
func (w *ReadCloser) Bytes() int64 {
	return w.bytes
}

func (w *ReadCloser) Read(b []byte) (int, error) {
	n, err := w.wrapped.Read(b)
	w.bytes += int64(n)
	w.readErr = err
	return n, err
}

func (w *ReadCloser) Close() error {
	closeErr := w.wrapped.Close()
	if w.onClose != nil {
		// Prefer the read error over the close error, it is usually more useful
		var onCloseErr error
		if w.readErr != nil && !errors.Is(w.readErr, io.EOF) {
			onCloseErr = w.readErr
		} else if closeErr != nil {
			onCloseErr = closeErr
		}
		w.onClose(w.bytes, onCloseErr)
	}
	return closeErr
}
