package errors

import (
	stderrors "errors"
	"strings"
)

// WireError is the JSON shape of an error pushed over the reload channel.
//
// Browsers render Message in the error overlay; Stack carries the chain of
// wrapped causes, outermost first, one per line.
type WireError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// Serialize maps an error to its wire representation deterministically.
//
// Plain JSON encoding of a Go error drops everything (error values have no
// exported fields), so the mapping is explicit: the name is the structured
// error code when there is one, the message is the outermost Error() text,
// and the stack is the unwrap chain.
func Serialize(err error) WireError {
	if err == nil {
		return WireError{Name: "Error"}
	}

	w := WireError{
		Name:    "Error",
		Message: err.Error(),
	}

	var se *ServerError
	if stderrors.As(err, &se) {
		if se.Code != "" {
			w.Name = se.Code
		} else if se.Category != "" {
			w.Name = string(se.Category)
		}
	}

	var chain []string
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	if len(chain) > 1 {
		w.Stack = strings.Join(chain, "\n")
	}
	return w
}
