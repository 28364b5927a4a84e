package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/mail"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"eventreg/internal/domain"
)

type formService struct {
	eventRepo      domain.EventRepository
	tx             domain.TxManager
	logger         *slog.Logger
	contextTimeout time.Duration
}

// NewFormService creates the FormService guarding event form schemas.
func NewFormService(eventRepo domain.EventRepository, tx domain.TxManager, logger *slog.Logger, timeout time.Duration) domain.FormService {
	return &formService{
		eventRepo:      eventRepo,
		tx:             tx,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func (s *formService) MutateSchema(ctx context.Context, eventID, actorID string, op domain.FormOp) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var event *domain.Event
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		event, err = loadOrganizedEvent(ctx, s.eventRepo, eventID, actorID)
		if err != nil {
			return err
		}
		if event.FormLocked {
			return domain.ErrFormLocked
		}
		schema, err := event.FormSchema.Apply(op)
		if err != nil {
			return err
		}
		// The store re-checks the lock flag in the same statement.
		if err := s.eventRepo.UpdateFormSchema(ctx, eventID, schema); err != nil {
			return err
		}
		event.FormSchema = schema
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "form schema updated", "event_id", eventID, "op", op.Type, "fields", len(event.FormSchema))
	return event, nil
}

func (s *formService) LockOnFirstRegistration(ctx context.Context, eventID string) error {
	locked, err := s.eventRepo.LockForm(ctx, eventID)
	if err != nil {
		return fmt.Errorf("lock form: %w", err)
	}
	if locked {
		s.logger.InfoContext(ctx, "form schema locked", "event_id", eventID)
	}
	return nil
}

func (s *formService) ValidateAnswers(schema domain.FormSchema, answers map[string]any) error {
	return validateAnswers(schema, answers)
}

// fieldValidator checks a present, non-empty answer against its field.
type fieldValidator func(f domain.FormField, v any) []string

var fieldValidators = map[domain.FieldType]fieldValidator{
	domain.FieldText:     validateText,
	domain.FieldTextarea: validateText,
	domain.FieldEmail:    validateEmail,
	domain.FieldNumber:   validateNumber,
	domain.FieldDropdown: validateSingleChoice,
	domain.FieldRadio:    validateSingleChoice,
	domain.FieldCheckbox: validateMultiChoice,
	domain.FieldDate:     validateDate,
	domain.FieldFile:     validateFile,
}

func validateAnswers(schema domain.FormSchema, answers map[string]any) error {
	var problems []string

	unknown := make([]string, 0)
	for key := range answers {
		if _, ok := schema.Field(key); !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		problems = append(problems, fmt.Sprintf("%s: unknown field", key))
	}

	for _, f := range schema {
		v, present := answers[f.Name]
		if !present || isEmptyAnswer(v) {
			if f.Required {
				problems = append(problems, fmt.Sprintf("%s: is required", f.Name))
			}
			continue
		}
		validate, ok := fieldValidators[f.Type]
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: unsupported field type %q", f.Name, f.Type))
			continue
		}
		for _, p := range validate(f, v) {
			problems = append(problems, fmt.Sprintf("%s: %s", f.Name, p))
		}
	}

	if len(problems) > 0 {
		return domain.Validation(problems...)
	}
	return nil
}

func isEmptyAnswer(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

func validateText(f domain.FormField, v any) []string {
	s, ok := v.(string)
	if !ok {
		return []string{"must be a string"}
	}
	var errs []string
	n := utf8.RuneCountInString(s)
	if f.Validators.MinLength != nil && n < *f.Validators.MinLength {
		errs = append(errs, fmt.Sprintf("must be at least %d characters", *f.Validators.MinLength))
	}
	if f.Validators.MaxLength != nil && n > *f.Validators.MaxLength {
		errs = append(errs, fmt.Sprintf("must be at most %d characters", *f.Validators.MaxLength))
	}
	return errs
}

func validateEmail(f domain.FormField, v any) []string {
	s, ok := v.(string)
	if !ok {
		return []string{"must be a string"}
	}
	if addr, err := mail.ParseAddress(s); err != nil || addr.Address != strings.TrimSpace(s) {
		return []string{"must be a valid email address"}
	}
	return validateText(f, v)
}

// toFloat converts a numeric answer; NaN and infinities are not numbers here.
func toFloat(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func validateNumber(f domain.FormField, v any) []string {
	n, ok := toFloat(v)
	if !ok {
		return []string{"must be a number"}
	}
	var errs []string
	if f.Validators.Min != nil && n < *f.Validators.Min {
		errs = append(errs, fmt.Sprintf("must be at least %g", *f.Validators.Min))
	}
	if f.Validators.Max != nil && n > *f.Validators.Max {
		errs = append(errs, fmt.Sprintf("must be at most %g", *f.Validators.Max))
	}
	return errs
}

func validateSingleChoice(f domain.FormField, v any) []string {
	s, ok := v.(string)
	if !ok {
		return []string{"must be one of the options"}
	}
	if !slices.Contains(f.Options, s) {
		return []string{fmt.Sprintf("%q is not an allowed option", s)}
	}
	return nil
}

func validateMultiChoice(f domain.FormField, v any) []string {
	var values []string
	switch t := v.(type) {
	case []string:
		values = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return []string{"must be a list of options"}
			}
			values = append(values, s)
		}
	case string:
		values = []string{t}
	default:
		return []string{"must be a list of options"}
	}
	var errs []string
	for _, s := range values {
		if !slices.Contains(f.Options, s) {
			errs = append(errs, fmt.Sprintf("%q is not an allowed option", s))
		}
	}
	return errs
}

func validateDate(_ domain.FormField, v any) []string {
	s, ok := v.(string)
	if !ok {
		return []string{"must be a date string"}
	}
	if _, err := time.Parse(time.DateOnly, s); err == nil {
		return nil
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return nil
	}
	return []string{"must be a date in YYYY-MM-DD form"}
}

func fileAnswer(v any) (domain.FileAnswer, bool) {
	switch t := v.(type) {
	case domain.FileAnswer:
		return t, true
	case *domain.FileAnswer:
		if t == nil {
			return domain.FileAnswer{}, false
		}
		return *t, true
	case map[string]any:
		var fa domain.FileAnswer
		fa.URL, _ = t["url"].(string)
		fa.ContentType, _ = t["content_type"].(string)
		if raw, present := t["size_kb"]; present {
			size, ok := toFloat(raw)
			if !ok || size < 0 {
				return domain.FileAnswer{}, false
			}
			// Partial kilobytes count as a whole one against max_size_kb.
			fa.SizeKB = int(math.Ceil(size))
		}
		return fa, fa.URL != ""
	}
	return domain.FileAnswer{}, false
}

func validateFile(f domain.FormField, v any) []string {
	fa, ok := fileAnswer(v)
	if !ok {
		return []string{"must be an uploaded file reference"}
	}
	var errs []string
	if len(f.Validators.AllowedTypes) > 0 && !slices.ContainsFunc(f.Validators.AllowedTypes, func(t string) bool {
		return strings.EqualFold(t, fa.ContentType)
	}) {
		errs = append(errs, fmt.Sprintf("file type %q is not allowed", fa.ContentType))
	}
	if f.Validators.MaxSizeKB != nil && fa.SizeKB > *f.Validators.MaxSizeKB {
		errs = append(errs, fmt.Sprintf("file must be at most %d KB", *f.Validators.MaxSizeKB))
	}
	return errs
}
