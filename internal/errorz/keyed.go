package errorz

// Keyed is an error for a single named input field, such as a form field.
type Keyed struct {
	Key string
	Err error
}

func (k Keyed) Error() string {
	if k.Err == nil {
		return k.Key + ": invalid"
	}
	return k.Key + ": " + k.Err.Error()
}

func (k Keyed) Unwrap() error {
	return k.Err
}
