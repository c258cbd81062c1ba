// Package trishade draws a triangle with one of two GPU pipelines and lets
// the user toggle between them and steer the background color.
//
// This package holds what every sub-package shares: the package logger
// (SetLogger, Logger) and the startup Config.
//
// # Packages
//
//   - render: the render state. It owns device, queue, surface and both
//     pipelines.
//   - app: the application shell. It relays window events to the render
//     state and bootstraps it without blocking the event loop.
//   - platform: device acquisition by name (vulkan, headless).
//   - surface: render targets (window swapchain, offscreen texture).
//   - cmd/trishade: the command-line entry point.
//
// # Quick Start
//
//	trishade --platform headless --frames 10 --log-level debug
//
// or, inside this module:
//
//	loop := window.NewHeadlessLoop(800, 600, 10)
//	shell := app.New(loop, app.StateFactory(platform.NewHeadless()))
//	defer shell.Close()
//	err := loop.Run(ctx, shell)
package trishade
