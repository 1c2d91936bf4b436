package service

import "errors"

// ErrClientClosed indicates the client has been closed.
var ErrClientClosed = errors.New("firmint: client is closed")

// ErrBatchNotReady indicates a result download was requested before the
// batch reached a terminal state.
var ErrBatchNotReady = errors.New("batch is not ready for download")
