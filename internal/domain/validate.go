package domain

// Validator collects builder checks in declaration order and keeps the first
// failure, so Build reports the same field for the same input every time.
type Validator struct {
	err error
}

// Required fails when present is false.
func (v *Validator) Required(field string, present bool) *Validator {
	if v.err == nil && !present {
		v.err = &MissingRequiredFieldError{Field: field}
	}
	return v
}

// RequiredString fails when s is empty.
func (v *Validator) RequiredString(field, s string) *Validator {
	return v.Required(field, s != "")
}

// AtLeastOne fails when none of present is true. fields and present are
// parallel.
func (v *Validator) AtLeastOne(fields []string, present ...bool) *Validator {
	if v.err != nil {
		return v
	}
	for _, p := range present {
		if p {
			return v
		}
	}
	v.err = &AtLeastOneFieldRequiredError{Fields: fields}
	return v
}

// NotEmpty fails when a collection has no elements.
func (v *Validator) NotEmpty(field string, n int) *Validator {
	if v.err == nil && n == 0 {
		v.err = &AtLeastOneElementRequiredError{Field: field}
	}
	return v
}

// Check records err when no earlier check has failed.
func (v *Validator) Check(err error) *Validator {
	if v.err == nil && err != nil {
		v.err = err
	}
	return v
}

// Err returns the first failure.
func (v *Validator) Err() error { return v.err }
