// Package ui renders the screen to a terminal.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/giljurha/Airvisual/internal/presenter"
	"github.com/giljurha/Airvisual/internal/refresh"
)

// categoryColor picks the AQI color for a category.
func categoryColor(c presenter.Category) *color.Color {
	switch c {
	case presenter.CategoryGood:
		return color.New(color.FgGreen, color.Bold)
	case presenter.CategoryModerate:
		return color.New(color.FgYellow, color.Bold)
	case presenter.CategoryUnhealthy:
		return color.New(color.FgRed, color.Bold)
	default:
		return color.New(color.FgMagenta, color.Bold)
	}
}

// FormatView formats a ViewState as a block of lines.
func FormatView(v presenter.ViewState, locale string) string {
	faint := color.New(color.Faint)

	var b strings.Builder
	title := v.LocationTitle
	if title == "" {
		title = "-"
	}
	fmt.Fprintf(&b, "%s\n", color.New(color.FgCyan).Sprint(title))
	if v.LocationSubtitle != "" {
		fmt.Fprintf(&b, "%s\n", faint.Sprint(v.LocationSubtitle))
	}

	if !v.HasReading {
		fmt.Fprintf(&b, "%s\n", faint.Sprint("(no reading yet)"))
		return b.String()
	}

	c := categoryColor(v.Category)
	fmt.Fprintf(&b, "%s  %s\n", c.Sprint(strconv.Itoa(v.AQIValue)), c.Sprint(v.Category.Label(locale)))
	fmt.Fprintf(&b, "%s %s\n", faint.Sprint("AQI-US"), faint.Sprint(v.FormattedTime))
	return b.String()
}

// FormatNotice formats a notice as one line.
func FormatNotice(n refresh.Notice) string {
	switch n.Level {
	case refresh.NoticeError:
		return color.RedString("! %s", n.Text)
	case refresh.NoticeWarning:
		return color.YellowString("! %s", n.Text)
	default:
		return color.GreenString("* %s", n.Text)
	}
}
