// Package window implements the event loops that drive an app.Handler.
//
// GLFWLoop opens a real window with glfw and must run on the main OS
// thread. HeadlessLoop has no window system at all and renders a fixed
// number of frames, which is what CI runs.
package window
