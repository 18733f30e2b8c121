package wiki

// Raw record shapes. Two differently-shaped sources describe the same
// change: the action API's recentchanges list (pull) and the live
// recentchange stream (push). Both normalize to ChangeEvent; nothing
// outside this package branches on the source shape.

// RecentChange is one entry of the action API's recentchanges list
// (format=json, rcprop=user|comment|flags|title|sizes|loginfo|ids|revision).
type RecentChange struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	User    string `json:"user"`
	Comment string `json:"comment"`

	RCID     int64 `json:"rcid"`
	RevID    int64 `json:"revid"`
	OldRevID int64 `json:"old_revid"`

	OldLen *int64 `json:"oldlen"`
	NewLen *int64 `json:"newlen"`

	LogType   string `json:"logtype"`
	LogAction string `json:"logaction"`

	// The API emits flag members as empty strings when the flag is set, so
	// presence of the member is the signal, not its value. Known-unreliable
	// heuristic inherited from the original formatter; kept deliberately.
	Bot   *string `json:"bot"`
	Minor *string `json:"minor"`
}

// StreamChange is one event of the live recentchange stream (EventStreams
// SSE or a WebSocket relay of the same feed).
type StreamChange struct {
	ID    int64  `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	User  string `json:"user"`

	Comment string `json:"comment"`

	Bot       bool  `json:"bot"`
	Minor     *bool `json:"minor,omitempty"`
	Patrolled bool  `json:"patrolled"`

	Length   *StreamLength   `json:"length,omitempty"`
	Revision *StreamRevision `json:"revision,omitempty"`

	ServerURL        string `json:"server_url"`
	ServerScriptPath string `json:"server_script_path"`

	LogType          string `json:"log_type"`
	LogAction        string `json:"log_action"`
	LogActionComment string `json:"log_action_comment"`
}

// StreamLength holds the page size in bytes before and after the change.
type StreamLength struct {
	Old *int64 `json:"old"`
	New *int64 `json:"new"`
}

// StreamRevision holds the revision IDs before and after the change.
type StreamRevision struct {
	Old int64 `json:"old"`
	New int64 `json:"new"`
}
