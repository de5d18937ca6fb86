//go:build linux

package cmd

// Register the X11 capture sources.
import _ "github.com/appdriver/appdriver/internal/capture/x11"
