package alerting

import "errors"

var ErrUnknownSensitivity = errors.New("alerting: unknown sensitivity level")
