package wiki

// Kind classifies a change event.
type Kind int

const (
	KindEdit Kind = iota
	KindNew
	KindLog
)

func (k Kind) String() string {
	switch k {
	case KindNew:
		return "new"
	case KindLog:
		return "log"
	default:
		return "edit"
	}
}

// ChangeEvent is the canonical representation of one upstream change,
// independent of which source shape it was ingested from. Instances are
// transient: built per record, rendered, sent, discarded.
type ChangeEvent struct {
	Kind Kind

	// ID is the feed's change identity (rcid), strictly increasing in the
	// feed's natural newest-first order. The watcher's cursor logic depends
	// on this ordering.
	ID int64

	Title   string
	User    string
	Comment string

	RevNew int64
	RevOld int64

	// Page sizes in bytes; nil when the source did not report them.
	LenOld *int64
	LenNew *int64

	Patrolled bool
	Minor     bool
	Bot       bool

	// Log-entry fields, set only for KindLog.
	LogType    string
	LogAction  string
	LogComment string

	// BaseURL is the resolved site root used to build permalinks, already
	// including the script path (".../wiki" for API records, the server's
	// own script path for stream records).
	BaseURL string
}

func kindOf(typ string) Kind {
	switch typ {
	case "new":
		return KindNew
	case "log":
		return KindLog
	default:
		return KindEdit
	}
}

// FromRecentChange normalizes a pull-shape record. baseURL is the configured
// wiki root; permalinks are built against baseURL + "/wiki". The patrolled
// flag is never available through the unauthenticated API and stays false.
func FromRecentChange(r RecentChange, baseURL string) (ChangeEvent, error) {
	ev := ChangeEvent{
		Kind:    kindOf(r.Type),
		ID:      r.RCID,
		Title:   r.Title,
		User:    r.User,
		Comment: r.Comment,
		RevNew:  r.RevID,
		RevOld:  r.OldRevID,
		LenOld:  r.OldLen,
		LenNew:  r.NewLen,
		Bot:     r.Bot != nil,
		Minor:   r.Minor != nil,
		BaseURL: baseURL + "/wiki",
	}
	if ev.Kind == KindLog {
		ev.LogType = r.LogType
		ev.LogAction = r.LogAction
		ev.LogComment = r.Comment
	}
	return ev, ev.validate()
}

// FromStreamChange normalizes a push-shape record. The link base is
// reconstructed from the record's own server fields.
func FromStreamChange(s StreamChange) (ChangeEvent, error) {
	ev := ChangeEvent{
		Kind:      kindOf(s.Type),
		ID:        s.ID,
		Title:     s.Title,
		User:      s.User,
		Comment:   s.Comment,
		Bot:       s.Bot,
		Minor:     s.Minor != nil && *s.Minor,
		Patrolled: s.Patrolled,
		BaseURL:   s.ServerURL + s.ServerScriptPath,
	}
	if s.Revision != nil {
		ev.RevNew = s.Revision.New
		ev.RevOld = s.Revision.Old
	}
	if s.Length != nil {
		ev.LenOld = s.Length.Old
		ev.LenNew = s.Length.New
	}
	if ev.Kind == KindLog {
		ev.LogType = s.LogType
		ev.LogAction = s.LogAction
		ev.LogComment = s.LogActionComment
	}
	if s.ServerURL == "" {
		return ev, &MalformedRecordError{ID: ev.ID, Field: "server_url"}
	}
	return ev, ev.validate()
}

func (ev ChangeEvent) validate() error {
	if ev.ID == 0 {
		return &MalformedRecordError{Field: "id"}
	}
	if ev.User == "" {
		return &MalformedRecordError{ID: ev.ID, Field: "user"}
	}
	if ev.Kind != KindLog && ev.Title == "" {
		return &MalformedRecordError{ID: ev.ID, Field: "title"}
	}
	return nil
}
