package images

import "errors"

// ErrInvalidSource is returned when a remote image cannot be fetched,
// carries a content type outside the allow-list, or its bytes cannot be
// decoded as an image. Callers surface it as a validation failure.
var ErrInvalidSource = errors.New("invalid image source")
