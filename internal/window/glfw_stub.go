//go:build !cgo || !((linux && !android) || windows || darwin)

package window

import (
	"context"
	"errors"

	"github.com/gogpu/trishade/app"
	"github.com/gogpu/trishade/render"
)

// ErrNoWindowSystem is returned when the binary was built without glfw.
var ErrNoWindowSystem = errors.New("window: built without a window system (cgo disabled)")

// GLFWLoop is unavailable in this build.
type GLFWLoop struct {
	Title         string
	Width, Height int
}

// NewGLFWLoop returns a loop that fails to run.
func NewGLFWLoop(title string, width, height int) *GLFWLoop {
	return &GLFWLoop{Title: title, Width: width, Height: height}
}

func (*GLFWLoop) CreateWindow() (render.Window, error) { return nil, ErrNoWindowSystem }
func (*GLFWLoop) Exit()                                {}
func (*GLFWLoop) Wake()                                {}

func (*GLFWLoop) Run(context.Context, app.Handler) error { return ErrNoWindowSystem }
