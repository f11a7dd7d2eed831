package mixer

import "errors"

// ErrResourceExhausted is returned when a buffer pool cannot satisfy a
// request even after a garbage-collection retry.
var ErrResourceExhausted = errors.New("mixer: gpu resource exhausted")

// ErrShaderCompileFailed is returned when the image kernel's shader
// program fails to build.
var ErrShaderCompileFailed = errors.New("mixer: shader compile failed")

// ErrBufferSizeMismatch is logged (not returned) by the audio mixer when
// it drops an audio item whose sample count does not match the channel's
// expected frame size.
var ErrBufferSizeMismatch = errors.New("mixer: audio buffer size mismatch")

// ErrDeviceClosed is returned by any GPU device operation invoked after
// Close.
var ErrDeviceClosed = errors.New("mixer: gpu device closed")
