package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// FieldType is the tag of a custom registration field.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldTextarea FieldType = "textarea"
	FieldNumber   FieldType = "number"
	FieldEmail    FieldType = "email"
	FieldDropdown FieldType = "dropdown"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldDate     FieldType = "date"
	FieldFile     FieldType = "file"
)

var knownFieldTypes = []FieldType{
	FieldText, FieldTextarea, FieldNumber, FieldEmail, FieldDropdown,
	FieldRadio, FieldCheckbox, FieldDate, FieldFile,
}

// IsChoice reports whether answers must come from the field's options.
func (t FieldType) IsChoice() bool {
	return t == FieldDropdown || t == FieldRadio || t == FieldCheckbox
}

// FieldValidators holds the optional constraints of a field. Which ones apply
// depends on the field type.
type FieldValidators struct {
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	MinLength    *int     `json:"min_length,omitempty"`
	MaxLength    *int     `json:"max_length,omitempty"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
	MaxSizeKB    *int     `json:"max_size_kb,omitempty"`
}

// FormField is one entry of an event's custom registration form. Name is the
// unique answer key.
type FormField struct {
	Name       string          `json:"name"`
	Label      string          `json:"label,omitempty"`
	Type       FieldType       `json:"type"`
	Required   bool            `json:"required"`
	Options    []string        `json:"options,omitempty"`
	Validators FieldValidators `json:"validators"`
}

// Validate checks the definition of a single field.
func (f FormField) Validate() []string {
	var errs []string
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, "field name is required")
	}
	if !slices.Contains(knownFieldTypes, f.Type) {
		errs = append(errs, fmt.Sprintf("field %q has unknown type %q", f.Name, f.Type))
	}
	if f.Type.IsChoice() && len(f.Options) == 0 {
		errs = append(errs, fmt.Sprintf("field %q must declare options", f.Name))
	}
	v := f.Validators
	if v.Min != nil && v.Max != nil && *v.Min > *v.Max {
		errs = append(errs, fmt.Sprintf("field %q has min greater than max", f.Name))
	}
	if v.MinLength != nil && v.MaxLength != nil && *v.MinLength > *v.MaxLength {
		errs = append(errs, fmt.Sprintf("field %q has min_length greater than max_length", f.Name))
	}
	return errs
}

// FormSchema is the ordered list of custom fields of an event.
type FormSchema []FormField

// Field returns the field with the given name.
func (s FormSchema) Field(name string) (FormField, bool) {
	i := s.index(name)
	if i < 0 {
		return FormField{}, false
	}
	return s[i], true
}

func (s FormSchema) index(name string) int {
	return slices.IndexFunc(s, func(f FormField) bool { return f.Name == name })
}

// Validate checks every field definition and name uniqueness.
func (s FormSchema) Validate() []string {
	var errs []string
	seen := make(map[string]struct{}, len(s))
	for _, f := range s {
		errs = append(errs, f.Validate()...)
		if _, dup := seen[f.Name]; dup {
			errs = append(errs, fmt.Sprintf("duplicate field name %q", f.Name))
		}
		seen[f.Name] = struct{}{}
	}
	return errs
}

// FormOpType names a schema mutation.
type FormOpType string

const (
	FormOpAdd     FormOpType = "add"
	FormOpUpdate  FormOpType = "update"
	FormOpDelete  FormOpType = "delete"
	FormOpMove    FormOpType = "move"
	FormOpReplace FormOpType = "replace"
)

// FormOp is a single mutation of an event's form schema. For move, Position is
// the target index. For add, a positive Position inserts before the field at
// that index; otherwise the field is appended.
type FormOp struct {
	Type     FormOpType  `json:"type"`
	Name     string      `json:"name,omitempty"`
	Field    *FormField  `json:"field,omitempty"`
	Position int         `json:"position,omitempty"`
	Fields   []FormField `json:"fields,omitempty"`
}

// Apply returns a new schema with op applied. The receiver is not modified.
func (s FormSchema) Apply(op FormOp) (FormSchema, error) {
	out := slices.Clone(s)
	switch op.Type {
	case FormOpAdd:
		if op.Field == nil {
			return nil, Validation("field is required")
		}
		if out.index(op.Field.Name) >= 0 {
			return nil, Validation(fmt.Sprintf("field %q already exists", op.Field.Name))
		}
		pos := len(out)
		if op.Position > 0 && op.Position < len(out) {
			pos = op.Position
		}
		out = slices.Insert(out, pos, *op.Field)
	case FormOpUpdate:
		if op.Field == nil {
			return nil, Validation("field is required")
		}
		name := op.Name
		if name == "" {
			name = op.Field.Name
		}
		i := out.index(name)
		if i < 0 {
			return nil, Validation(fmt.Sprintf("field %q does not exist", name))
		}
		if op.Field.Name != name && out.index(op.Field.Name) >= 0 {
			return nil, Validation(fmt.Sprintf("field %q already exists", op.Field.Name))
		}
		out[i] = *op.Field
	case FormOpDelete:
		i := out.index(op.Name)
		if i < 0 {
			return nil, Validation(fmt.Sprintf("field %q does not exist", op.Name))
		}
		out = slices.Delete(out, i, i+1)
	case FormOpMove:
		i := out.index(op.Name)
		if i < 0 {
			return nil, Validation(fmt.Sprintf("field %q does not exist", op.Name))
		}
		if op.Position < 0 || op.Position >= len(out) {
			return nil, Validation("position out of range")
		}
		f := out[i]
		out = slices.Delete(out, i, i+1)
		out = slices.Insert(out, op.Position, f)
	case FormOpReplace:
		out = slices.Clone(FormSchema(op.Fields))
	default:
		return nil, Validation(fmt.Sprintf("unknown form operation %q", op.Type))
	}
	if errs := out.Validate(); len(errs) > 0 {
		return nil, Validation(errs...)
	}
	return out, nil
}

// FileAnswer is the value of a file field: a reference into the external blob
// store plus the metadata the schema constrains.
type FileAnswer struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	SizeKB      int    `json:"size_kb"`
}

// FormService manages the lifecycle of an event's custom form.
type FormService interface {
	// MutateSchema applies op to the event's schema; ErrFormLocked once the
	// first registration exists.
	MutateSchema(ctx context.Context, eventID, actorID string, op FormOp) (*Event, error)
	// ValidateAnswers type-checks answers against a schema snapshot.
	ValidateAnswers(schema FormSchema, answers map[string]any) error
	// LockOnFirstRegistration locks the form; idempotent.
	LockOnFirstRegistration(ctx context.Context, eventID string) error
}
