package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/conduit-lang/typestate/internal/compiler/errors"
)

// Level is the severity a message is rendered with
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

type levelStyle struct {
	symbol string
	header []color.Attribute
	body   []color.Attribute
}

var styles = map[Level]levelStyle{
	LevelError:   {"❌", []color.Attribute{color.FgRed, color.Bold}, []color.Attribute{color.FgRed}},
	LevelWarning: {"⚠️", []color.Attribute{color.FgYellow, color.Bold}, []color.Attribute{color.FgYellow}},
	LevelInfo:    {"ℹ️", []color.Attribute{color.FgCyan, color.Bold}, []color.Attribute{color.FgCyan}},
}

// Message is a block of terminal output describing a problem:
//
//	❌ GEN609 models/user.go:12:2
//	   method UserBuilder.Build would be generated for both finalize method and build
//
//	   rename one of the fields, or set finalize_method in typestate.yml
//
//	   → Get help: typestate generate --help
type Message struct {
	Level Level
	// Title heads the block, e.g. an error code
	Title string
	// Where follows the title, e.g. a source position
	Where string
	Text  string
	// Hint is printed below the text
	Hint        string
	Suggestions []string
	Commands    []string
}

// Render returns the message as text, colored unless noColor is set
func (m Message) Render(noColor bool) string {
	style := styles[m.Level]
	header := color.New(style.header...)
	body := color.New(style.body...)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	if noColor {
		for _, c := range []*color.Color{header, body, yellow, cyan} {
			c.DisableColor()
		}
	}

	var b strings.Builder

	head := style.symbol
	for _, part := range []string{m.Title, m.Where} {
		if part != "" {
			head += " " + part
		}
	}
	if head == style.symbol {
		header.Fprintf(&b, "%s %s\n", head, m.Text)
	} else {
		header.Fprintln(&b, head)
		body.Fprintf(&b, "   %s\n", m.Text)
	}

	if m.Hint != "" {
		b.WriteString("\n")
		body.Fprintf(&b, "   %s\n", m.Hint)
	}
	if len(m.Suggestions) > 0 {
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}
	if len(m.Commands) > 0 {
		b.WriteString("\n")
		for _, cmd := range m.Commands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

// CompilerErrors renders every diagnostic of a run as a message
func CompilerErrors(list errors.ErrorList, noColor bool) string {
	blocks := make([]string, 0, len(list))
	for _, err := range list {
		level := LevelError
		switch err.Severity {
		case errors.SeverityWarning:
			level = LevelWarning
		case errors.SeverityInfo:
			level = LevelInfo
		}

		blocks = append(blocks, Message{
			Level: level,
			Title: string(err.Code),
			Where: where(err.Location.File, err.Location.Line, err.Location.Column),
			Text:  err.Message,
			Hint:  err.Suggestion,
		}.Render(noColor))
	}
	return strings.Join(blocks, "\n")
}

// where renders a position, leaving out unknown parts
func where(file string, line, col int) string {
	switch {
	case file == "":
		return ""
	case line == 0:
		return file
	case col == 0:
		return fmt.Sprintf("%s:%d", file, line)
	default:
		return fmt.Sprintf("%s:%d:%d", file, line, col)
	}
}

// GenerateError renders a failure that is not a compiler diagnostic
func GenerateError(text string, noColor bool) string {
	return Message{
		Title: "GENERATION FAILED",
		Text:  text,
		Commands: []string{
			"Preview without writing: typestate generate --dry-run",
			"Get help: typestate generate --help",
		},
	}.Render(noColor)
}

// ConfigError renders an invalid or unreadable typestate.yml
func ConfigError(text string, noColor bool) string {
	return Message{
		Title: "CONFIGURATION ERROR",
		Text:  text,
		Commands: []string{
			"View config: cat typestate.yml",
			"Recreate config: typestate init --force",
		},
	}.Render(noColor)
}

// Warning renders a one-line warning with optional suggestions
func Warning(text string, suggestions []string, noColor bool) string {
	return Message{Level: LevelWarning, Text: text, Suggestions: suggestions}.Render(noColor)
}

// Info renders a one-line note
func Info(text string, noColor bool) string {
	return Message{Level: LevelInfo, Text: text}.Render(noColor)
}

// FormatSuccess renders a success line
func FormatSuccess(text string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s\n", text)
}
