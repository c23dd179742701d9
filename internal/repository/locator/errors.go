package locator

import "errors"

var ErrNotLocated = errors.New("room is not located on any instance")
