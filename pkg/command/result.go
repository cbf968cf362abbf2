package command

import "encoding/json"

// Result is the sole feedback channel for dispatched commands: Message and
// Data on success, Error on failure, never both. User-input mistakes never
// surface as Go errors or panics past the dispatcher.
type Result struct {
	Message string
	Error   string
	Data    map[string]any
}

// OK builds a success result. data may be nil.
func OK(message string, data map[string]any) Result {
	return Result{Message: message, Data: data}
}

// Fail builds a failure result from an error.
func Fail(err error) Result {
	return Result{Error: err.Error()}
}

// Failed reports whether the result carries an error.
func (r Result) Failed() bool {
	return r.Error != ""
}

// MarshalJSON flattens Data beside the message, so a scan result reads
// {"message": ..., "objects": [...]} on the wire. Failures marshal as a
// bare {"error": ...} object.
func (r Result) MarshalJSON() ([]byte, error) {
	if r.Failed() {
		return json.Marshal(map[string]any{"error": r.Error})
	}
	m := make(map[string]any, len(r.Data)+1)
	for k, v := range r.Data {
		m[k] = v
	}
	if r.Message != "" {
		m["message"] = r.Message
	}
	return json.Marshal(m)
}
