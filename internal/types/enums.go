package types

// User roles
const (
	RoleMember  = "MEMBER"
	RoleManager = "MANAGER"
	RoleAdmin   = "ADMIN"
)

// User Status values
const (
	UserActive    = "ACTIVE"
	UserInactive  = "INACTIVE"
	UserSuspended = "SUSPENDED"
	UserDeleted   = "DELETED"
)

// Team Status values
const (
	TeamActive   = "ACTIVE"
	TeamArchived = "ARCHIVED"
	TeamDeleted  = "DELETED"
)

// Team Member Roles
const (
	MemberRoleOwner  = "OWNER"
	MemberRoleAdmin  = "ADMIN"
	MemberRoleMember = "MEMBER"
)

// Team Member Status values
const (
	MemberActive   = "ACTIVE"
	MemberInactive = "INACTIVE"
	MemberRemoved  = "REMOVED"
)

// Project Status values
const (
	ProjectPlanned   = "PLANNED"
	ProjectActive    = "ACTIVE"
	ProjectCompleted = "COMPLETED"
	ProjectOnHold    = "ON_HOLD"
	ProjectArchived  = "ARCHIVED"
	ProjectDeleted   = "DELETED"
)

// Task Status values
const (
	TaskToDo       = "TO_DO"
	TaskInProgress = "IN_PROGRESS"
	TaskDone       = "DONE"
	TaskDeleted    = "DELETED"
)

// Task Priority values
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

// Comment/Attachment Status values
const (
	ContentActive  = "ACTIVE"
	ContentDeleted = "DELETED"
)

// Valid values for validation
var ValidUserRoles = []string{RoleMember, RoleManager, RoleAdmin}

var ValidUserStatuses = []string{UserActive, UserInactive, UserSuspended, UserDeleted}

var ValidMemberRoles = []string{MemberRoleOwner, MemberRoleAdmin, MemberRoleMember}

var ValidMemberStatuses = []string{MemberActive, MemberInactive, MemberRemoved}

var ValidProjectStatuses = []string{
	ProjectPlanned, ProjectActive, ProjectCompleted,
	ProjectOnHold, ProjectArchived, ProjectDeleted,
}

var ValidTaskStatuses = []string{TaskToDo, TaskInProgress, TaskDone, TaskDeleted}

var ValidPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func IsValidUserRole(role string) bool { return contains(ValidUserRoles, role) }

func IsValidUserStatus(status string) bool { return contains(ValidUserStatuses, status) }

func IsValidMemberRole(role string) bool { return contains(ValidMemberRoles, role) }

func IsValidMemberStatus(status string) bool { return contains(ValidMemberStatuses, status) }

func IsValidProjectStatus(status string) bool { return contains(ValidProjectStatuses, status) }

func IsValidTaskStatus(status string) bool { return contains(ValidTaskStatuses, status) }

func IsValidPriority(priority string) bool { return contains(ValidPriorities, priority) }

// Named "not deleted" predicates so callers never re-derive status != DELETED ad hoc.

func UserNotDeleted(status string) bool { return status != UserDeleted }

func TeamNotDeleted(status string) bool { return status != TeamDeleted }

func ProjectNotDeleted(status string) bool { return status != ProjectDeleted }

func TaskNotDeleted(status string) bool { return status != TaskDeleted }

func ContentNotDeleted(status string) bool { return status != ContentDeleted }
