package render

import (
	"strings"
	"testing"

	"wikinotify/internal/wiki"
)

func intp(n int64) *int64 { return &n }

func editEvent() wiki.ChangeEvent {
	return wiki.ChangeEvent{
		Kind:    wiki.KindEdit,
		ID:      5,
		Title:   "Main Page",
		User:    "Alice",
		Comment: "fix typo",
		RevNew:  200,
		RevOld:  100,
		LenOld:  intp(100),
		LenNew:  intp(150),
		BaseURL: "https://wiki.example.org/wiki",
	}
}

func TestMessageHTMLEdit(t *testing.T) {
	got := Message(editEvent(), HTML)
	want := `<font color="#7F7F7F">[[</font>` +
		`<b><font color="#FC7F00">Main Page</font></b>` +
		`<font color="#7F7F7F">]]</font>` +
		` <font color="#FF0000"></font>` +
		` https://wiki.example.org/wiki/index.php?diff=200&oldid=100` +
		` <font color="#7F0000">*</font>` +
		` <font color="#009300">Alice</font>` +
		` <font color="#7F0000">*</font>` +
		` <b>(+50)</b>` +
		` <font color="#009393">fix typo</font>`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestMessageStyledEdit(t *testing.T) {
	got := Message(editEvent(), Styled)
	want := `[[**Main Page**]] ** https://wiki.example.org/wiki/index.php?diff=200&oldid=100 * **Alice** * **(+50)** *fix typo*`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNewPageURLAndFlag(t *testing.T) {
	ev := editEvent()
	ev.Kind = wiki.KindNew

	html := Message(ev, HTML)
	if !strings.Contains(html, "?oldid=200&rc_id=5") {
		t.Errorf("expected oldid/rc_id permalink in %q", html)
	}
	if !strings.Contains(html, `<font color="#FF0000">N</font>`) {
		t.Errorf("expected N flag run in %q", html)
	}

	styled := Message(ev, Styled)
	if !strings.Contains(styled, "?oldid=200&rc_id=5") {
		t.Errorf("expected oldid/rc_id permalink in %q", styled)
	}
	if !strings.Contains(styled, "*N*") {
		t.Errorf("expected italic N flag in %q", styled)
	}
}

func TestEditURL(t *testing.T) {
	got := Message(editEvent(), HTML)
	if !strings.Contains(got, "?diff=200&oldid=100") {
		t.Errorf("expected diff permalink in %q", got)
	}
}

func TestFlagOrder(t *testing.T) {
	ev := editEvent()
	ev.Kind = wiki.KindNew
	ev.Patrolled = true
	ev.Minor = true
	ev.Bot = true
	got := Message(ev, HTML)
	if !strings.Contains(got, `<font color="#FF0000">!NMB</font>`) {
		t.Errorf("expected !NMB flag run in %q", got)
	}
}

func TestDelta(t *testing.T) {
	tests := []struct {
		name     string
		old, new *int64
		want     string // expected in HTML output
	}{
		{"large removal emphasized", intp(1000), intp(400), "<b>(<b>-600</b>)</b>"},
		{"small removal plain", intp(1000), intp(900), "<b>(-100)</b>"},
		{"addition gets plus", intp(100), intp(150), "<b>(+50)</b>"},
		{"zero stays bare", intp(100), intp(100), "<b>(0)</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := editEvent()
			ev.LenOld, ev.LenNew = tt.old, tt.new
			got := Message(ev, HTML)
			if !strings.Contains(got, tt.want) {
				t.Errorf("expected %q in %q", tt.want, got)
			}
		})
	}
}

func TestDeltaUnknownLengthOmitted(t *testing.T) {
	for _, ev := range []wiki.ChangeEvent{
		func() wiki.ChangeEvent { e := editEvent(); e.LenOld = nil; return e }(),
		func() wiki.ChangeEvent { e := editEvent(); e.LenNew = nil; return e }(),
	} {
		for _, d := range []Dialect{HTML, Styled} {
			got := Message(ev, d)
			if strings.Contains(got, "(") {
				t.Errorf("dialect %d: expected no delta segment in %q", d, got)
			}
		}
	}
}

func TestDeltaStyledEmphasis(t *testing.T) {
	ev := editEvent()
	ev.LenOld, ev.LenNew = intp(1000), intp(400)
	got := Message(ev, Styled)
	if !strings.Contains(got, "**(**-600**)**") {
		t.Errorf("expected emphasized styled delta in %q", got)
	}
}

func TestLogEvent(t *testing.T) {
	ev := wiki.ChangeEvent{
		Kind:       wiki.KindLog,
		ID:         9,
		User:       "Admin",
		LogType:    "delete",
		LogAction:  "delete",
		LogComment: "spam page",
		BaseURL:    "https://wiki.example.org/wiki",
	}
	got := Message(ev, HTML)
	if !strings.Contains(got, "Special:Log/Delete") {
		t.Errorf("expected log title in %q", got)
	}
	if strings.Contains(got, "index.php") {
		t.Errorf("expected no permalink for log entry in %q", got)
	}
	if !strings.Contains(got, `<font color="#FF0000">delete</font>`) {
		t.Errorf("expected log action as flag in %q", got)
	}
	if !strings.Contains(got, "spam page") {
		t.Errorf("expected log comment in %q", got)
	}
}

func TestLogEventMissingType(t *testing.T) {
	ev := wiki.ChangeEvent{Kind: wiki.KindLog, ID: 9, User: "Admin", BaseURL: "x"}
	got := Message(ev, Styled)
	if !strings.Contains(got, "Special:Log/Unknown") {
		t.Errorf("expected Unknown log title in %q", got)
	}
}

func TestMessageIsPure(t *testing.T) {
	ev := editEvent()
	for _, d := range []Dialect{HTML, Styled} {
		if Message(ev, d) != Message(ev, d) {
			t.Errorf("dialect %d: identical inputs rendered differently", d)
		}
	}
}

func TestStripTags(t *testing.T) {
	got := StripTags(Message(editEvent(), HTML))
	want := `[[Main Page]]  https://wiki.example.org/wiki/index.php?diff=200&oldid=100 * Alice * (+50) fix typo`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestStripTagsEntities(t *testing.T) {
	if got := StripTags("<b>a &amp; b</b>"); got != "a & b" {
		t.Errorf("got %q, want %q", got, "a & b")
	}
}
