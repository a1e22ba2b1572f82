// ABOUTME: Fixes the lipgloss background mode before bubbletea initializes
// ABOUTME: Imported for side effects by cmd/api-tryit ahead of the chat terminal host

package termfix

import "github.com/charmbracelet/lipgloss"

// With the background already known, bubbletea's init skips the OSC 10/11
// query whose reply would otherwise arrive on stdin mid-prompt. This
// package must not import bubbletea, so its init runs first.
func init() {
	lipgloss.SetHasDarkBackground(true)
}
