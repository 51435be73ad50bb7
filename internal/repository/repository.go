package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ============================================
// Models / Entities
// ============================================

// Audit carries the shared creation/update bookkeeping. It is embedded as a
// value, never inherited; every entity owns these fields and they are set from
// the acting user's id on each write.
type Audit struct {
	CreatedBy string
	UpdatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type User struct {
	ID            string
	Email         string
	Password      string
	FullName      string
	Role          string
	Status        string
	EmailVerified bool
	Audit
}

type RefreshToken struct {
	ID        string
	Token     string
	UserID    string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

type Team struct {
	ID      string
	Name    string
	OwnerID string
	Status  string
	Audit
	Members []*TeamMember
}

type TeamMember struct {
	ID       string
	TeamID   string
	UserID   string
	Role     string
	Status   string
	JoinedAt time.Time
	User     *User
}

type Project struct {
	ID          string
	Name        string
	Description *string
	TeamID      string
	Status      string
	StartDate   *time.Time
	EndDate     *time.Time
	Audit
}

type Task struct {
	ID          string
	Title       string
	Description *string
	ProjectID   string
	Status      string
	Priority    string
	AssignedTo  *string
	DueDate     *time.Time
	CompletedAt *time.Time
	Audit
	Assignee *User
}

type Comment struct {
	ID       string
	TaskID   string
	AuthorID string
	Content  string
	Status   string
	Audit
	Author *User
}

type Attachment struct {
	ID          string
	TaskID      string
	AuthorID    string
	FileName    string
	ObjectKey   string
	ContentType string
	Size        int64
	Status      string
	Audit
}

type TaskFilters struct {
	Status     []string
	Priority   []string
	AssignedTo *string
	Search     string
	Limit      int
	Offset     int
}

// ============================================
// Repository Interfaces
// ============================================

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
	CountOtherActiveAdmins(ctx context.Context, excludeUserID string) (int, error)

	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, token string) (bool, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int, error)
	DeleteRevokedRefreshTokens(ctx context.Context) (int, error)
}

type TeamRepository interface {
	Create(ctx context.Context, team *Team) error
	FindByID(ctx context.Context, id string) (*Team, error)
	FindByName(ctx context.Context, name string) (*Team, error)
	FindByUserID(ctx context.Context, userID string) ([]*Team, error)
	Update(ctx context.Context, team *Team) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error

	AddMember(ctx context.Context, member *TeamMember) error
	FindMember(ctx context.Context, teamID, userID string) (*TeamMember, error)
	FindMembers(ctx context.Context, teamID string, activeOnly bool) ([]*TeamMember, error)
	UpdateMemberRole(ctx context.Context, teamID, userID, role string) error
	UpdateMemberStatus(ctx context.Context, teamID, userID, status string) error
	UpdateMembersStatus(ctx context.Context, teamID, fromStatus, toStatus string) error
	CountActiveMembers(ctx context.Context, teamID string) (int, error)
	CountActiveMembersWithRole(ctx context.Context, teamID, role string) (int, error)
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByID(ctx context.Context, id string) (*Project, error)
	FindByTeamID(ctx context.Context, teamID string) ([]*Project, error)
	FindByName(ctx context.Context, teamID, name string) (*Project, error)
	Update(ctx context.Context, project *Project) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

type TaskRepository interface {
	Create(ctx context.Context, task *Task) error
	FindByID(ctx context.Context, id string) (*Task, error)
	FindByProjectID(ctx context.Context, projectID string, filters *TaskFilters) ([]*Task, error)
	FindByTitle(ctx context.Context, projectID, title string) (*Task, error)
	FindByAssignee(ctx context.Context, userID string) ([]*Task, error)
	Update(ctx context.Context, task *Task) error
	UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, updatedBy string) error
}

type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	FindByID(ctx context.Context, id string) (*Comment, error)
	FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error)
	Update(ctx context.Context, comment *Comment) error
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

type AttachmentRepository interface {
	Create(ctx context.Context, attachment *Attachment) error
	FindByID(ctx context.Context, id string) (*Attachment, error)
	FindByTaskID(ctx context.Context, taskID string) ([]*Attachment, error)
	UpdateStatus(ctx context.Context, id, status, updatedBy string) error
}

// ============================================
// Repositories Container
// ============================================

type Repositories struct {
	UserRepo       UserRepository
	TeamRepo       TeamRepository
	ProjectRepo    ProjectRepository
	TaskRepo       TaskRepository
	CommentRepo    CommentRepository
	AttachmentRepo AttachmentRepository
}

// NewRepositories creates in-memory repositories (for testing/fallback)
func NewRepositories() *Repositories {
	users := newInMemoryUserRepository()
	return &Repositories{
		UserRepo:       users,
		TeamRepo:       newInMemoryTeamRepository(users),
		ProjectRepo:    newInMemoryProjectRepository(),
		TaskRepo:       newInMemoryTaskRepository(),
		CommentRepo:    newInMemoryCommentRepository(),
		AttachmentRepo: newInMemoryAttachmentRepository(),
	}
}

// NewPgRepositories creates PostgreSQL-backed repositories
func NewPgRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepo:       &pgUserRepository{pool: pool},
		TeamRepo:       &pgTeamRepository{pool: pool},
		ProjectRepo:    &pgProjectRepository{pool: pool},
		TaskRepo:       &pgTaskRepository{pool: pool},
		CommentRepo:    &pgCommentRepository{pool: pool},
		AttachmentRepo: &pgAttachmentRepository{pool: pool},
	}
}
