// Package demo holds the models behind the reactor demos: a counter with
// a derived progress value, a keyed list of counters and an application
// state split into slices. Rendering layers (the terminal UI, the CLI
// printers, the inspector) drive these models; the models know nothing
// about how they are displayed.
package demo
