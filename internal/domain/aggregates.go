package domain

import "time"

// User is an independent aggregate. ID is assigned by the store on creation.
type User struct {
	ID       int64
	Username string
	Email    string
	Role     string
}

// Project is an independent aggregate.
//
// Dates are calendar dates (midnight UTC, see DateOf).
// A nil EndDate means the project is ongoing.
type Project struct {
	ID          int64
	Name        string
	Description string
	StartDate   time.Time
	EndDate     *time.Time
}

// IsActive reports whether the project has no end date.
func (p *Project) IsActive() bool {
	return p.EndDate == nil
}

// IsOverdue reports whether the project ended before today.
func (p *Project) IsOverdue(today time.Time) bool {
	return p.EndDate != nil && DateOf(*p.EndDate).Before(DateOf(today))
}

// OverlapsRange reports whether [StartDate, EndDate or +inf) intersects [start-1d, end+1d]
// using strict comparisons on both edges.
func (p *Project) OverlapsRange(start, end time.Time) bool {
	startsBeforeEnd := DateOf(p.StartDate).Before(AddDays(end, 1))
	endsAfterStart := p.EndDate == nil || DateOf(*p.EndDate).After(AddDays(start, -1))
	return startsBeforeEnd && endsAfterStart
}

// Task is a dependent record that references a Project and a User by ID.
// It is a back-reference, not a containment relation.
type Task struct {
	ID          int64
	Name        string
	Description string
	Status      string
	Priority    int
	DueDate     time.Time
	ProjectID   int64
	UserID      int64
}

// HasStatus reports whether the task status equals s, ignoring case.
func (t *Task) HasStatus(s TaskStatus) bool {
	return EqualFoldASCII(t.Status, string(s))
}

// IsCompleted reports whether the task status is COMPLETED.
func (t *Task) IsCompleted() bool {
	return t.HasStatus(TaskStatusCompleted)
}

// IsPastDue reports whether the due date is strictly before today, regardless of status.
func (t *Task) IsPastDue(today time.Time) bool {
	return DateOf(t.DueDate).Before(DateOf(today))
}

// IsOverdue reports whether the task is past due and not completed.
func (t *Task) IsOverdue(today time.Time) bool {
	return t.IsPastDue(today) && !t.IsCompleted()
}

// IsDueWithin reports whether the due date falls in [today, today+days].
func (t *Task) IsDueWithin(today time.Time, days int) bool {
	due := DateOf(t.DueDate)
	from := DateOf(today)
	days = min(days, maxDaySpan)
	return !due.Before(from) && !due.After(AddDays(from, days))
}
