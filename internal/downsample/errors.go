package downsample

import "errors"

var ErrWindowReplaceFailed = errors.New("downsample: window replace failed, raw rows left untouched")
