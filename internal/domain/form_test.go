package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseSchema() FormSchema {
	return FormSchema{
		{Name: "full_name", Type: FieldText, Required: true},
		{Name: "tshirt", Type: FieldDropdown, Options: []string{"S", "M", "L"}},
		{Name: "age", Type: FieldNumber},
	}
}

func names(s FormSchema) []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

func TestFormSchema_Apply(t *testing.T) {
	tests := []struct {
		name      string
		op        FormOp
		wantNames []string
		wantErr   bool
	}{
		{
			name:      "add appends",
			op:        FormOp{Type: FormOpAdd, Field: &FormField{Name: "college", Type: FieldText}},
			wantNames: []string{"full_name", "tshirt", "age", "college"},
		},
		{
			name:      "add at position",
			op:        FormOp{Type: FormOpAdd, Position: 1, Field: &FormField{Name: "college", Type: FieldText}},
			wantNames: []string{"full_name", "college", "tshirt", "age"},
		},
		{
			name:    "add duplicate",
			op:      FormOp{Type: FormOpAdd, Field: &FormField{Name: "age", Type: FieldNumber}},
			wantErr: true,
		},
		{
			name:    "add choice without options",
			op:      FormOp{Type: FormOpAdd, Field: &FormField{Name: "track", Type: FieldRadio}},
			wantErr: true,
		},
		{
			name:      "update renames",
			op:        FormOp{Type: FormOpUpdate, Name: "age", Field: &FormField{Name: "years", Type: FieldNumber}},
			wantNames: []string{"full_name", "tshirt", "years"},
		},
		{
			name:    "update missing",
			op:      FormOp{Type: FormOpUpdate, Name: "nope", Field: &FormField{Name: "nope", Type: FieldText}},
			wantErr: true,
		},
		{
			name:      "delete",
			op:        FormOp{Type: FormOpDelete, Name: "tshirt"},
			wantNames: []string{"full_name", "age"},
		},
		{
			name:      "move to front",
			op:        FormOp{Type: FormOpMove, Name: "age", Position: 0},
			wantNames: []string{"age", "full_name", "tshirt"},
		},
		{
			name:    "move out of range",
			op:      FormOp{Type: FormOpMove, Name: "age", Position: 3},
			wantErr: true,
		},
		{
			name:      "replace",
			op:        FormOp{Type: FormOpReplace, Fields: []FormField{{Name: "email", Type: FieldEmail}}},
			wantNames: []string{"email"},
		},
		{
			name:    "unknown type",
			op:      FormOp{Type: "rename"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := baseSchema()
			got, err := original.Apply(tt.op)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantNames, names(got))
			assert.Equal(t, names(baseSchema()), names(original), "receiver must not change")
		})
	}
}

func TestFormField_ValidateBounds(t *testing.T) {
	lo, hi := 10.0, 1.0
	f := FormField{Name: "n", Type: FieldNumber, Validators: FieldValidators{Min: &lo, Max: &hi}}
	assert.NotEmpty(t, f.Validate())
}
