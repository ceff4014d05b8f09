package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// renderer styles error reports. Its profile is detected from stderr
// until EnableColors or DisableColors pins it.
var renderer = lipgloss.NewRenderer(os.Stderr)

var (
	errorStyle = renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	codeStyle  = renderer.NewStyle().Bold(true)
	noteStyle  = renderer.NewStyle().Foreground(lipgloss.Color("6"))
	dimStyle   = renderer.NewStyle().Foreground(lipgloss.Color("8"))
	linkStyle  = renderer.NewStyle().Foreground(lipgloss.Color("4")).Underline(true)
)

// DisableColors renders reports as plain text.
func DisableColors() {
	renderer.SetColorProfile(termenv.Ascii)
}

// EnableColors forces ANSI colors, even when stderr is not a terminal.
func EnableColors() {
	renderer.SetColorProfile(termenv.ANSI)
}

// Format returns a multi-line report for terminal display.
func (e *Error) Format() string {
	var b strings.Builder

	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(errorStyle.Render("ERROR"))
		b.WriteString(" ")
		b.WriteString(codeStyle.Render(e.Code + ": " + e.Message))
	} else {
		b.WriteString(errorStyle.Render("ERROR:"))
		b.WriteString(" ")
		b.WriteString(e.Message)
	}
	b.WriteString("\n\n")

	section := func(label string, style lipgloss.Style, text string) {
		b.WriteString("  ")
		if label != "" {
			b.WriteString(style.Render(label))
			b.WriteString(text)
		} else {
			b.WriteString(style.Render(text))
		}
		b.WriteString("\n\n")
	}

	if e.Subject != "" {
		section("", noteStyle, e.Subject)
	}
	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			fmt.Fprintf(&b, "  %s\n", line)
		}
		b.WriteString("\n")
	}
	if e.Wrapped != nil {
		section("Cause: ", dimStyle, e.Wrapped.Error())
	}
	if e.Suggestion != "" {
		section("Hint: ", noteStyle, e.Suggestion)
	}
	if e.DocURL != "" {
		fmt.Fprintf(&b, "  %s%s\n", dimStyle.Render("Learn more: "), linkStyle.Render(e.DocURL))
	}
	return b.String()
}

// FormatCompact returns "CODE: message [subject]" on one line.
func (e *Error) FormatCompact() string {
	s := e.Message
	if e.Code != "" {
		s = e.Code + ": " + s
	}
	if e.Subject != "" {
		s += " [" + e.Subject + "]"
	}
	return s
}

// jsonReport is the wire form of FormatJSON.
type jsonReport struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Subject    string   `json:"subject,omitempty"`
	Detail     string   `json:"detail,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
	DocURL     string   `json:"docUrl,omitempty"`
	Cause      string   `json:"cause,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *Error) FormatJSON() string {
	r := jsonReport{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Subject:    e.Subject,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
		DocURL:     e.DocURL,
	}
	if e.Wrapped != nil {
		r.Cause = e.Wrapped.Error()
	}
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText greedily breaks text into lines of at most width bytes.
// A single word longer than width gets a line of its own.
func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	var lines []string
	line := ""
	for _, w := range words {
		switch {
		case line == "":
			line = w
		case len(line)+1+len(w) <= width:
			line += " " + w
		default:
			lines = append(lines, line)
			line = w
		}
	}
	if line != "" {
		lines = append(lines, line)
	}
	return lines
}

// Fprint writes a formatted error to w. Errors that are not *Error get a
// plain one-line report.
func Fprint(w io.Writer, err error) {
	var e *Error
	if As(err, &e) {
		fmt.Fprint(w, e.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", errorStyle.Render("ERROR:"), err.Error())
}
