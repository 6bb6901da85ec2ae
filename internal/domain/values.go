package domain

// TaskStatus is the lifecycle state of a task.
// Stored statuses keep the case they were submitted with; compare with Task.HasStatus.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
)

// TaskStatuses lists the valid statuses in display order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusCompleted, TaskStatusBlocked}
}

// Role is the access role of a user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
)

// Roles lists the valid roles in display order.
func Roles() []Role {
	return []Role{RoleAdmin, RoleUser, RoleManager}
}

// Field limits.
const (
	UsernameMinLength = 3
	UsernameMaxLength = 50
	EmailMaxLength    = 100

	NameMinLength        = 2
	NameMaxLength        = 50
	DescriptionMaxLength = 100

	PriorityMin = 1
	PriorityMax = 5

	// DateHorizonDays bounds how far in the past a project may start
	// and how far in the future a task may be due.
	DateHorizonDays = 365
)
