package errorz

import "strings"

// InvalidInput signals that a provided input is invalid due to the wrapped
// errors. Field specific errors are wrapped as Keyed.
type InvalidInput []error

func (e InvalidInput) Error() string {
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

func (e InvalidInput) Unwrap() []error {
	return e
}

// Keys returns the keys of the Keyed errors in order of occurrence.
// Errors that are not Keyed are skipped.
func (e InvalidInput) Keys() []string {
	keys := make([]string, 0, len(e))
	for _, err := range e {
		if k, ok := err.(Keyed); ok {
			keys = append(keys, k.Key)
		}
	}
	return keys
}
