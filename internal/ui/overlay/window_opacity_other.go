//go:build !windows

package overlay

// applyWindowAlpha is a no-op where only the background rectangle carries
// the opacity.
func (overlay *Window) applyWindowAlpha() {}
