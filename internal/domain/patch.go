package domain

// Field is an optional value in a partial update. The zero Field means
// "not supplied"; a set Field replaces the stored value, even when Value is
// the zero value of T.
type Field[T any] struct {
	Set   bool
	Value T
}

// Set returns a supplied Field holding v.
func Set[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// TaskPatch lists the fields an update should change. Description uses a
// pointer so that a set Field with a nil Value clears the description.
type TaskPatch struct {
	Title       Field[string]
	Description Field[*string]
	Status      Field[string]
}

// IsEmpty reports whether the patch supplies no fields at all.
func (p TaskPatch) IsEmpty() bool {
	return !p.Title.Set && !p.Description.Set && !p.Status.Set
}

// Validate checks every supplied field with the same rules as Task.Validate.
func (p TaskPatch) Validate() error {
	if p.Title.Set {
		if err := validateTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.Description.Set {
		if err := validateDescription(p.Description.Value); err != nil {
			return err
		}
	}
	if p.Status.Set {
		if err := validateStatus(p.Status.Value); err != nil {
			return err
		}
	}
	return nil
}

// ApplyTo copies the supplied fields onto t. Timestamps are left to the caller.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Title.Set {
		t.Title = p.Title.Value
	}
	if p.Description.Set {
		t.Description = p.Description.Value
	}
	if p.Status.Set {
		t.Status = p.Status.Value
	}
}
