package structures

import (
	"context"
	"io"
)

// View is a screen reachable through the client router.
type View interface {
	Mount(ctx context.Context) error
	Unmount()
	Render(w io.Writer)
}

type Route struct {
	Url       string
	View      View
	Protected bool
}

type Console struct {
	In  io.Reader
	Out io.Writer
}
