package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventreg/internal/domain"
)

func floatPtr(v float64) *float64 { return &v }

func answerSchema() domain.FormSchema {
	return domain.FormSchema{
		{Name: "full_name", Type: domain.FieldText, Required: true, Validators: domain.FieldValidators{MinLength: intPtr(2), MaxLength: intPtr(20)}},
		{Name: "bio", Type: domain.FieldTextarea},
		{Name: "age", Type: domain.FieldNumber, Validators: domain.FieldValidators{Min: floatPtr(16), Max: floatPtr(99)}},
		{Name: "email", Type: domain.FieldEmail},
		{Name: "track", Type: domain.FieldRadio, Options: []string{"web", "ml"}},
		{Name: "tshirt", Type: domain.FieldDropdown, Options: []string{"S", "M", "L"}},
		{Name: "diet", Type: domain.FieldCheckbox, Options: []string{"veg", "vegan", "halal"}},
		{Name: "dob", Type: domain.FieldDate},
		{Name: "resume", Type: domain.FieldFile, Validators: domain.FieldValidators{AllowedTypes: []string{"application/pdf"}, MaxSizeKB: intPtr(512)}},
	}
}

func TestValidateAnswers(t *testing.T) {
	tests := []struct {
		name    string
		answers map[string]any
		wantErr bool
	}{
		{name: "minimal valid", answers: map[string]any{"full_name": "Ada"}},
		{
			name: "all fields valid",
			answers: map[string]any{
				"full_name": "Ada Lovelace",
				"bio":       "likes engines",
				"age":       float64(28),
				"email":     "ada@example.com",
				"track":     "ml",
				"tshirt":    "M",
				"diet":      []any{"veg", "halal"},
				"dob":       "1998-12-10",
				"resume":    map[string]any{"url": "https://blob/1.pdf", "content_type": "application/pdf", "size_kb": float64(120)},
			},
		},
		{name: "json number", answers: map[string]any{"full_name": "Ada", "age": json.Number("30")}},
		{name: "required missing", answers: map[string]any{}, wantErr: true},
		{name: "required blank", answers: map[string]any{"full_name": "   "}, wantErr: true},
		{name: "too short", answers: map[string]any{"full_name": "A"}, wantErr: true},
		{name: "wrong type for text", answers: map[string]any{"full_name": 42}, wantErr: true},
		{name: "number below min", answers: map[string]any{"full_name": "Ada", "age": float64(12)}, wantErr: true},
		{name: "number not numeric", answers: map[string]any{"full_name": "Ada", "age": "old"}, wantErr: true},
		{name: "bad email", answers: map[string]any{"full_name": "Ada", "email": "not-an-email"}, wantErr: true},
		{name: "radio not an option", answers: map[string]any{"full_name": "Ada", "track": "iot"}, wantErr: true},
		{name: "dropdown not an option", answers: map[string]any{"full_name": "Ada", "tshirt": "XXL"}, wantErr: true},
		{name: "checkbox outside options", answers: map[string]any{"full_name": "Ada", "diet": []any{"veg", "keto"}}, wantErr: true},
		{name: "bad date", answers: map[string]any{"full_name": "Ada", "dob": "10/12/1998"}, wantErr: true},
		{name: "file wrong type", answers: map[string]any{"full_name": "Ada", "resume": map[string]any{"url": "u", "content_type": "image/png", "size_kb": float64(1)}}, wantErr: true},
		{name: "file too large", answers: map[string]any{"full_name": "Ada", "resume": map[string]any{"url": "u", "content_type": "application/pdf", "size_kb": float64(900)}}, wantErr: true},
		{name: "file size just over limit", answers: map[string]any{"full_name": "Ada", "resume": map[string]any{"url": "u", "content_type": "application/pdf", "size_kb": float64(512.1)}}, wantErr: true},
		{name: "file size at limit", answers: map[string]any{"full_name": "Ada", "resume": map[string]any{"url": "u", "content_type": "application/pdf", "size_kb": json.Number("512")}}},
		{name: "file size not numeric", answers: map[string]any{"full_name": "Ada", "resume": map[string]any{"url": "u", "content_type": "application/pdf", "size_kb": "big"}}, wantErr: true},
		{name: "number NaN string", answers: map[string]any{"full_name": "Ada", "age": "NaN"}, wantErr: true},
		{name: "number infinite", answers: map[string]any{"full_name": "Ada", "age": "+Inf"}, wantErr: true},
		{name: "number NaN json", answers: map[string]any{"full_name": "Ada", "age": json.Number("NaN")}, wantErr: true},
		{name: "file without url", answers: map[string]any{"full_name": "Ada", "resume": map[string]any{"content_type": "application/pdf"}}, wantErr: true},
		{name: "unknown key", answers: map[string]any{"full_name": "Ada", "shoe": "42"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnswers(answerSchema(), tt.answers)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMutateSchema_LockedAfterFirstRegistration(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(5))
	ctx := context.Background()

	updated, err := h.forms.MutateSchema(ctx, event.ID, organizer, domain.FormOp{
		Type:  domain.FormOpAdd,
		Field: &domain.FormField{Name: "college", Type: domain.FieldText},
	})
	require.NoError(t, err)
	require.Len(t, updated.FormSchema, 1)

	h.register(t, event.ID, "alice")

	ops := []domain.FormOp{
		{Type: domain.FormOpAdd, Field: &domain.FormField{Name: "year", Type: domain.FieldNumber}},
		{Type: domain.FormOpUpdate, Name: "college", Field: &domain.FormField{Name: "college", Type: domain.FieldTextarea}},
		{Type: domain.FormOpDelete, Name: "college"},
		{Type: domain.FormOpMove, Name: "college", Position: 0},
		{Type: domain.FormOpReplace},
	}
	for _, op := range ops {
		_, err := h.forms.MutateSchema(ctx, event.ID, organizer, op)
		assert.ErrorIs(t, err, domain.ErrFormLocked, "op %s", op.Type)
	}

	// Answers keep being collected against the locked schema.
	_, err = h.admission.Register(ctx, domain.RegisterInput{
		EventID:       event.ID,
		ParticipantID: "bob",
		Answers:       map[string]any{"college": "MIT"},
	})
	require.NoError(t, err)
}

func TestMutateSchema_OnlyOrganizer(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(5))

	_, err := h.forms.MutateSchema(context.Background(), event.ID, "intruder", domain.FormOp{
		Type:  domain.FormOpAdd,
		Field: &domain.FormField{Name: "college", Type: domain.FieldText},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestMutateSchema_InvalidOpLeavesSchema(t *testing.T) {
	h := newHarness(t)
	in := seatsEvent(5)
	in.FormSchema = domain.FormSchema{{Name: "college", Type: domain.FieldText}}
	event := h.publish(t, in)

	_, err := h.forms.MutateSchema(context.Background(), event.ID, organizer, domain.FormOp{Type: domain.FormOpDelete, Name: "nope"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	stored, err := h.events.GetByID(context.Background(), event.ID)
	require.NoError(t, err)
	assert.Len(t, stored.FormSchema, 1)
}

func TestLockOnFirstRegistration_Idempotent(t *testing.T) {
	h := newHarness(t)
	event := h.publish(t, seatsEvent(5))
	ctx := context.Background()

	require.NoError(t, h.forms.LockOnFirstRegistration(ctx, event.ID))
	require.NoError(t, h.forms.LockOnFirstRegistration(ctx, event.ID))

	stored, err := h.events.GetByID(ctx, event.ID)
	require.NoError(t, err)
	assert.True(t, stored.FormLocked)
}
