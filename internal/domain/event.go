package domain

import (
	"context"
	"slices"
	"strings"
	"time"
)

// EventKind distinguishes capacity-limited events from merchandise events.
type EventKind string

const (
	// EventKindSeats is a normal event limited by a single participant capacity.
	EventKindSeats EventKind = "seats"
	// EventKindStock is a merchandise event limited by per size×color stock.
	EventKindStock EventKind = "stock"
)

// EventStatus is the organizer-driven lifecycle of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusOngoing   EventStatus = "ongoing"
	EventStatusCompleted EventStatus = "completed"
	EventStatusClosed    EventStatus = "closed"
)

// Inventory counter keys. Seats events use SeatsKey; stock events keep one
// counter per variant plus the AggregateKey total.
const (
	SeatsKey     = "seats"
	AggregateKey = "*"
)

// Variant is one size×color stock bucket of a merchandise event.
type Variant struct {
	Size  string `json:"size"`
	Color string `json:"color"`
	Stock int    `json:"stock"`
}

// Key returns the inventory counter key of the variant.
func (v Variant) Key() string {
	return VariantKey(v.Size, v.Color)
}

// VariantKey normalizes a size and color into an inventory counter key.
func VariantKey(size, color string) string {
	return strings.ToLower(strings.TrimSpace(size)) + "/" + strings.ToLower(strings.TrimSpace(color))
}

// EligibilityType selects how a participant qualifies for an event.
type EligibilityType string

const (
	EligibilityOpen      EligibilityType = "open"
	EligibilityAttribute EligibilityType = "attribute"
	EligibilityTeam      EligibilityType = "team"
)

// EligibilityRule restricts who may register. Attribute rules compare one
// participant attribute against AllowedValues; team rules require a team name
// and a member count within [MinTeamSize, MaxTeamSize] (0 = unbounded).
type EligibilityRule struct {
	Type          EligibilityType `json:"type"`
	Attribute     string          `json:"attribute,omitempty"`
	AllowedValues []string        `json:"allowed_values,omitempty"`
	MinTeamSize   int             `json:"min_team_size,omitempty"`
	MaxTeamSize   int             `json:"max_team_size,omitempty"`
}

// RequiresTeam reports whether registrations must carry a team.
func (r EligibilityRule) RequiresTeam() bool {
	return r.Type == EligibilityTeam
}

// Allows reports whether a participant with the given attributes satisfies
// the attribute part of the rule.
func (r EligibilityRule) Allows(attributes map[string]string) bool {
	if r.Type != EligibilityAttribute {
		return true
	}
	v, ok := attributes[r.Attribute]
	if !ok {
		return false
	}
	return slices.ContainsFunc(r.AllowedValues, func(allowed string) bool {
		return strings.EqualFold(strings.TrimSpace(allowed), strings.TrimSpace(v))
	})
}

// Event is a registrable event run by an organizer.
// swagger:model Event
type Event struct {
	ID                   string          `json:"id"`
	OrganizerID          string          `json:"organizer_id"`
	Name                 string          `json:"name"`
	Kind                 EventKind       `json:"kind"`
	Status               EventStatus     `json:"status"`
	CapacityLimit        *int            `json:"capacity_limit"`
	Variants             []Variant       `json:"variants,omitempty"`
	StartsAt             *time.Time      `json:"starts_at"`
	RegistrationDeadline *time.Time      `json:"registration_deadline"`
	RegistrationOpen     bool            `json:"registration_open"`
	RequiresPayment      bool            `json:"requires_payment"`
	Eligibility          EligibilityRule `json:"eligibility"`
	FormSchema           FormSchema      `json:"form_schema"`
	FormLocked           bool            `json:"form_locked"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// AcceptsRegistrations reports whether the lifecycle status admits new registrations.
func (e *Event) AcceptsRegistrations() bool {
	return e.Status == EventStatusPublished || e.Status == EventStatusOngoing
}

// DeadlinePassed reports whether now is after the registration deadline.
func (e *Event) DeadlinePassed(now time.Time) bool {
	return e.RegistrationDeadline != nil && now.After(*e.RegistrationDeadline)
}

// HasStarted reports whether the event start time is at or before now.
func (e *Event) HasStarted(now time.Time) bool {
	if e.Status == EventStatusOngoing || e.Status == EventStatusCompleted {
		return true
	}
	return e.StartsAt != nil && !now.Before(*e.StartsAt)
}

// FindVariant returns the variant matching size and color, if any.
func (e *Event) FindVariant(size, color string) (Variant, bool) {
	key := VariantKey(size, color)
	for _, v := range e.Variants {
		if v.Key() == key {
			return v, true
		}
	}
	return Variant{}, false
}

// InitialCounters returns the inventory counters an event starts with.
// A nil Remaining means unlimited.
func (e *Event) InitialCounters() []InventoryCounter {
	if e.Kind == EventKindStock {
		counters := make([]InventoryCounter, 0, len(e.Variants)+1)
		total := 0
		for _, v := range e.Variants {
			stock := v.Stock
			counters = append(counters, InventoryCounter{EventID: e.ID, Key: v.Key(), Remaining: &stock, Total: &stock})
			total += v.Stock
		}
		remaining, all := total, total
		return append(counters, InventoryCounter{EventID: e.ID, Key: AggregateKey, Remaining: &remaining, Total: &all})
	}
	c := InventoryCounter{EventID: e.ID, Key: SeatsKey}
	if e.CapacityLimit != nil {
		remaining, total := *e.CapacityLimit, *e.CapacityLimit
		c.Remaining, c.Total = &remaining, &total
	}
	return []InventoryCounter{c}
}

// validTransitions lists the lifecycle moves an organizer may make.
var validTransitions = map[EventStatus][]EventStatus{
	EventStatusDraft:     {EventStatusPublished, EventStatusClosed},
	EventStatusPublished: {EventStatusOngoing, EventStatusClosed},
	EventStatusOngoing:   {EventStatusCompleted, EventStatusClosed},
	EventStatusCompleted: {EventStatusClosed},
}

// CanTransitionTo reports whether the event may move to next.
func (e *Event) CanTransitionTo(next EventStatus) bool {
	return slices.Contains(validTransitions[e.Status], next)
}

// EventRepository defines the interface for event storage
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	// GetByIDForShare reads the event under a shared lock held for the rest
	// of the transaction. Writers to the row wait until it ends.
	GetByIDForShare(ctx context.Context, id string) (*Event, error)
	UpdateStatus(ctx context.Context, id string, status EventStatus) error
	SetRegistrationOpen(ctx context.Context, id string, open bool) error
	// UpdateFormSchema replaces the schema only while the form is unlocked;
	// it returns ErrFormLocked otherwise.
	UpdateFormSchema(ctx context.Context, id string, schema FormSchema) error
	// LockForm sets form_locked. It is idempotent and reports whether this
	// call performed the transition.
	LockForm(ctx context.Context, id string) (bool, error)
}

// CreateEventInput carries the organizer-supplied fields of a new event.
type CreateEventInput struct {
	OrganizerID          string
	Name                 string
	Kind                 EventKind
	CapacityLimit        *int
	Variants             []Variant
	StartsAt             *time.Time
	RegistrationDeadline *time.Time
	RequiresPayment      bool
	Eligibility          EligibilityRule
	FormSchema           FormSchema
}

// EventWithInventory bundles an event with its current inventory counters.
type EventWithInventory struct {
	Event     *Event             `json:"event"`
	Inventory []InventoryCounter `json:"inventory"`
}

// EventService defines organizer-facing event lifecycle operations.
type EventService interface {
	CreateEvent(ctx context.Context, in CreateEventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*EventWithInventory, error)
	TransitionEvent(ctx context.Context, eventID, actorID string, next EventStatus) (*Event, error)
	SetRegistrationOpen(ctx context.Context, eventID, actorID string, open bool) (*Event, error)
}
