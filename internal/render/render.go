// Package render turns canonical change events into destination-specific
// marked-up text. The composition mirrors MediaWiki's IRC feed formatter:
//
//	[[title]] FLAGS url * user * (delta) comment
//
// with colors (HTML dialect) or bold/italic markers (styled dialect).
package render

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"wikinotify/internal/wiki"
)

// Dialect selects a destination markup convention.
type Dialect int

const (
	// HTML renders font-color spans and <b> tags (Matrix custom HTML).
	HTML Dialect = iota
	// Styled renders **bold** and *italic* markers (Signal styled text).
	Styled
)

// Message renders one event for the given dialect. It is a pure function
// of its inputs.
func Message(ev wiki.ChangeEvent, d Dialect) string {
	title, url, flag, comment := headline(ev)
	delta := delta(ev, d)

	switch d {
	case Styled:
		if delta != "" {
			delta = styledBold(delta)
		}
		return "[[" + styledBold(title) + "]]" +
			" " + styledItalic(flag) +
			" " + url + " *" +
			" " + styledBold(ev.User) + " *" +
			" " + delta + " " + styledItalic(comment)
	default:
		if delta != "" {
			delta = htmlBold(delta)
		}
		return htmlColor("[[", "#7F7F7F") +
			htmlBold(htmlColor(title, "#FC7F00")) +
			htmlColor("]]", "#7F7F7F") +
			" " + htmlColor(flag, "#FF0000") +
			" " + url + " " + htmlColor("*", "#7F0000") +
			" " + htmlColor(ev.User, "#009300") + " " + htmlColor("*", "#7F0000") +
			" " + delta + " " + htmlColor(comment, "#009393")
	}
}

// headline builds the title, permalink, flag string and comment for an
// event. Log entries link nowhere and use the raw log action as the flag;
// everything else gets the !NMB flag string and a diff or oldid permalink.
func headline(ev wiki.ChangeEvent) (title, url, flag, comment string) {
	if ev.Kind == wiki.KindLog {
		logType := ev.LogType
		if logType == "" {
			logType = "unknown"
		}
		return "Special:Log/" + capitalize(logType), "", ev.LogAction, ev.LogComment
	}

	if ev.Patrolled {
		flag += "!"
	}
	var query string
	if ev.Kind == wiki.KindNew {
		query = fmt.Sprintf("?oldid=%d&rc_id=%d", ev.RevNew, ev.ID)
		flag += "N"
	} else {
		query = fmt.Sprintf("?diff=%d&oldid=%d", ev.RevNew, ev.RevOld)
	}
	if ev.Minor {
		flag += "M"
	}
	if ev.Bot {
		flag += "B"
	}

	return ev.Title, ev.BaseURL + "/index.php" + query, flag, ev.Comment
}

// delta renders the size-change segment, or "" when either length is
// unknown. Removals larger than 500 bytes are emphasized, additions get a
// plus sign.
func delta(ev wiki.ChangeEvent, d Dialect) string {
	if ev.LenOld == nil || ev.LenNew == nil {
		return ""
	}
	diff := *ev.LenNew - *ev.LenOld
	s := strconv.FormatInt(diff, 10)
	switch {
	case diff < -500:
		if d == Styled {
			s = styledBold(s)
		} else {
			s = htmlBold(s)
		}
	case diff > 0:
		s = "+" + s
	}
	return "(" + s + ")"
}

func htmlColor(text, color string) string {
	return `<font color="` + color + `">` + text + `</font>`
}

func htmlBold(text string) string { return "<b>" + text + "</b>" }

func styledBold(text string) string { return "**" + text + "**" }

func styledItalic(text string) string { return "*" + text + "*" }

// capitalize uppercases the first rune and lowercases the rest, matching
// how log titles are built upstream.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
