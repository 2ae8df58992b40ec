// Package native holds the platform input injectors behind
// input.Injector: CoreGraphics CGEvent on macOS and robotgo elsewhere.
package native
