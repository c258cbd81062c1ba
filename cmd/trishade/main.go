// Command trishade opens a window and draws a triangle with one of two
// shader pipelines.
//
// Usage:
//
//	trishade [flags]
//
// Space toggles the pipeline, moving the pointer changes the background
// color and Escape quits.
//
// Flags:
//
//	--platform <name>   - Device platform: vulkan or headless (default: best available)
//	--width, --height   - Initial window size (default: 800x600)
//	--title <text>      - Window title
//	--config <path>     - YAML config file; flags override its values
//	--log-level <level> - debug, info, warn, error or off
//	--frames <n>        - Headless only: frames to render before exiting
package main

import (
	"fmt"
	"os"
	"runtime"
)

func init() {
	// glfw must run on the main OS thread.
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
