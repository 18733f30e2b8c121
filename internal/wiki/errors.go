package wiki

import "fmt"

// FetchError reports an unreachable or malformed feed response.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// MalformedRecordError reports a raw record missing a field required for
// its declared kind.
type MalformedRecordError struct {
	ID    int64
	Field string
}

func (e *MalformedRecordError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("malformed record: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed record %d: missing %s", e.ID, e.Field)
}
