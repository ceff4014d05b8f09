// Package tui renders the counter demo in the terminal with Bubble Tea.
//
// The model is a thin rendering layer: key presses write to the counter,
// and a subscription on the count turns every change (including writes
// from outside the TUI, such as the inspector) into a redraw message.
package tui
