package eventstream

import "errors"

// ErrNilRippleEvent indicates a nil ripple event payload was provided to a publisher.
var ErrNilRippleEvent = errors.New("nil ripple event")
