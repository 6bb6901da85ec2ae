package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// emailPattern accepts local@domain.tld with letters, digits and +_.- in the local part
// and a top-level label of at least two letters.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@([A-Za-z0-9.-]+\.[A-Za-z]{2,})$`)

// validateText checks non-blankness and rune length bounds. A zero min skips the lower bound.
func validateText(entity, field, value string, minLen, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return invalidField(entity, field, "cannot be blank")
	}
	n := utf8.RuneCountInString(value)
	if minLen > 0 && n < minLen {
		return invalidField(entity, field, fmt.Sprintf("must be at least %d characters long", minLen))
	}
	if n > maxLen {
		return invalidField(entity, field, fmt.Sprintf("cannot exceed %d characters", maxLen))
	}
	return nil
}

// oneOf returns the canonical member of set equal to s ignoring ASCII case.
func oneOf[T ~string](s string, set []T) (T, bool) {
	for _, v := range set {
		if EqualFoldASCII(s, string(v)) {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func joinSet[T ~string](set []T) string {
	names := make([]string, len(set))
	for i, v := range set {
		names[i] = string(v)
	}
	return strings.Join(names, ", ")
}

func validateYear(entity, field string, t time.Time) error {
	if !InDateRange(t) {
		return invalidField(entity, field, fmt.Sprintf("must fall between years %d and %d", MinYear, MaxYear))
	}
	return nil
}

// === User ===

// ValidateUser checks username, email and role.
func ValidateUser(u *User) error {
	if u == nil {
		return InvalidArgument("user cannot be nil")
	}
	if err := ValidateUsername(u.Username); err != nil {
		return err
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	_, err := NewRole(u.Role)
	return err
}

// ValidateUsername requires 3-50 characters, not blank.
func ValidateUsername(s string) error {
	return validateText("user", "username", s, UsernameMinLength, UsernameMaxLength)
}

// ValidateEmail requires a well-formed address of at most 100 characters.
func ValidateEmail(s string) error {
	if strings.TrimSpace(s) == "" {
		return invalidField("user", "email", "cannot be blank")
	}
	if !emailPattern.MatchString(s) {
		return invalidField("user", "email", "has an invalid format")
	}
	if utf8.RuneCountInString(s) > EmailMaxLength {
		return invalidField("user", "email", fmt.Sprintf("cannot exceed %d characters", EmailMaxLength))
	}
	return nil
}

// NewRole validates s against the role set, ignoring case, and returns the canonical role.
func NewRole(s string) (Role, error) {
	if strings.TrimSpace(s) == "" {
		return "", invalidField("user", "role", "cannot be blank")
	}
	role, ok := oneOf(s, Roles())
	if !ok {
		return "", invalidField("user", "role", "must be one of "+joinSet(Roles()))
	}
	return role, nil
}

// === Project ===

// ValidateProject checks name, description and dates relative to today.
func ValidateProject(p *Project, today time.Time) error {
	if p == nil {
		return InvalidArgument("project cannot be nil")
	}
	if err := validateText("project", "name", p.Name, NameMinLength, NameMaxLength); err != nil {
		return err
	}
	if err := validateText("project", "description", p.Description, 0, DescriptionMaxLength); err != nil {
		return err
	}
	return ValidateProjectDates(p.StartDate, p.EndDate, today)
}

// ValidateProjectDates requires a start date no more than 365 days before today
// and an optional end date that does not precede the start date.
// An end date before the start date is a business rule violation.
func ValidateProjectDates(start time.Time, end *time.Time, today time.Time) error {
	if start.IsZero() {
		return invalidField("project", "start date", "is required")
	}
	if err := validateYear("project", "start date", start); err != nil {
		return err
	}
	if end != nil {
		if err := validateYear("project", "end date", *end); err != nil {
			return err
		}
	}
	if end != nil && DateOf(start).After(DateOf(*end)) {
		return &FieldError{
			Entity: "project",
			Field:  "start date",
			Issue:  "cannot be after end date",
			Kind:   ErrBusinessRule,
		}
	}
	if DateOf(start).Before(AddDays(today, -DateHorizonDays)) {
		return invalidField("project", "start date", fmt.Sprintf("cannot be more than %d days in the past", DateHorizonDays))
	}
	return nil
}

// === Task ===

// ValidateTask checks every scalar field of a task relative to today.
// References to project and user are checked by the service against the store.
func ValidateTask(t *Task, today time.Time) error {
	if t == nil {
		return InvalidArgument("task cannot be nil")
	}
	if err := validateText("task", "name", t.Name, NameMinLength, NameMaxLength); err != nil {
		return err
	}
	if err := validateText("task", "description", t.Description, 0, DescriptionMaxLength); err != nil {
		return err
	}
	if _, err := NewTaskStatus(t.Status); err != nil {
		return err
	}
	if err := ValidatePriority(t.Priority); err != nil {
		return err
	}
	return ValidateDueDate(t.DueDate, today)
}

// NewTaskStatus validates s against the status set, ignoring case, and returns the canonical status.
func NewTaskStatus(s string) (TaskStatus, error) {
	if strings.TrimSpace(s) == "" {
		return "", invalidField("task", "status", "cannot be blank")
	}
	status, ok := oneOf(s, TaskStatuses())
	if !ok {
		return "", invalidField("task", "status", "must be one of "+joinSet(TaskStatuses()))
	}
	return status, nil
}

// ValidatePriority requires 1 <= p <= 5.
func ValidatePriority(p int) error {
	if p < PriorityMin || p > PriorityMax {
		return invalidField("task", "priority", fmt.Sprintf("must be between %d and %d", PriorityMin, PriorityMax))
	}
	return nil
}

// ValidateDueDate requires a due date no more than 365 days after today.
// Past dates are allowed so historical tasks can be imported.
func ValidateDueDate(due, today time.Time) error {
	if due.IsZero() {
		return invalidField("task", "due date", "is required")
	}
	if err := validateYear("task", "due date", due); err != nil {
		return err
	}
	if DateOf(due).After(AddDays(today, DateHorizonDays)) {
		return invalidField("task", "due date", fmt.Sprintf("cannot be more than %d days in the future", DateHorizonDays))
	}
	return nil
}
