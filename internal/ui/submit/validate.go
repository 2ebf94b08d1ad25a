package submit

import "strings"

// Validator inspects a snapshot before anything is sent.
type Validator func(Snapshot) error

// Native fails when the adapter reported the form's native constraints as violated.
func Native(message string) Validator {
	if message == "" {
		message = "Please fill in all required fields."
	}
	return func(s Snapshot) error {
		if !s.Valid {
			return &ValidationError{Message: message}
		}
		return nil
	}
}

// Required fails when any of names is blank.
func Required(names ...string) Validator {
	return func(s Snapshot) error {
		for _, name := range names {
			if strings.TrimSpace(s.Get(name)) == "" {
				return &ValidationError{Field: name, Message: "This field is required."}
			}
		}
		return nil
	}
}

// Match fails when two fields differ, as with password confirmation.
func Match(field, confirm, message string) Validator {
	if message == "" {
		message = "Values do not match."
	}
	return func(s Snapshot) error {
		if s.Get(field) != s.Get(confirm) {
			return &ValidationError{Field: confirm, Message: message}
		}
		return nil
	}
}

// All runs validators in order and returns the first failure.
func All(validators ...Validator) Validator {
	return func(s Snapshot) error {
		for _, v := range validators {
			if v == nil {
				continue
			}
			if err := v(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// ForAction runs v only when the submission's action field equals action.
func ForAction(action string, v Validator) Validator {
	return func(s Snapshot) error {
		if s.Get("action") != action || v == nil {
			return nil
		}
		return v(s)
	}
}
