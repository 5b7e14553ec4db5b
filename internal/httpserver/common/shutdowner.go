package common

import "context"

// Shutdowner is implemented by components needing a final flush or
// close on graceful shutdown, such as the observability provider.
type Shutdowner interface {
	Shutdown(context.Context) error
}
