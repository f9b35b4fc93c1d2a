package events

import "errors"

var errForbidden = errors.New("forbidden")
