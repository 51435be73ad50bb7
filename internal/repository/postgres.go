package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicate is returned when an insert or update trips a unique
// constraint. The constraints are the source of truth for race-safety; the
// application-level existence checks are only an early exit.
var ErrDuplicate = errors.New("duplicate resource")

// IsDuplicate reports whether err stems from a unique-constraint violation.
func IsDuplicate(err error) bool {
	if errors.Is(err, ErrDuplicate) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func translateConstraint(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

// ============================================
// PostgreSQL User Repository
// ============================================

type pgUserRepository struct {
	pool *pgxpool.Pool
}

const userColumns = `id, email, password, full_name, role, status, email_verified, created_by, updated_by, created_at, updated_at`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Password, &user.FullName, &user.Role,
		&user.Status, &user.EmailVerified, &user.CreatedBy, &user.UpdatedBy,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, password, full_name, role, status, email_verified, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		user.Email, user.Password, user.FullName, user.Role, user.Status,
		user.EmailVerified, user.CreatedBy, user.UpdatedBy,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	return translateConstraint(err)
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *pgUserRepository) FindAll(ctx context.Context) ([]*User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY email`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *pgUserRepository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users SET email = $2, password = $3, full_name = $4, role = $5,
			status = $6, email_verified = $7, updated_by = $8, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.Password, user.FullName, user.Role,
		user.Status, user.EmailVerified, user.UpdatedBy,
	)
	return translateConstraint(err)
}

func (r *pgUserRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	query := `UPDATE users SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, updatedBy)
	return err
}

func (r *pgUserRepository) CountOtherActiveAdmins(ctx context.Context, excludeUserID string) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = 'ADMIN' AND status = 'ACTIVE' AND id <> $1`
	var count int
	err := r.pool.QueryRow(ctx, query, excludeUserID).Scan(&count)
	return count, err
}

func (r *pgUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (token, user_id, expires_at, revoked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.pool.QueryRow(ctx, query, token.Token, token.UserID, token.ExpiresAt, token.Revoked).
		Scan(&token.ID, &token.CreatedAt)
	return translateConstraint(err)
}

func (r *pgUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	query := `
		SELECT id, token, user_id, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token = $1
	`
	rt := &RefreshToken{}
	err := r.pool.QueryRow(ctx, query, token).Scan(
		&rt.ID, &rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *pgUserRepository) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1 AND revoked = FALSE`
	tag, err := r.pool.Exec(ctx, query, token)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *pgUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	_, err := r.pool.Exec(ctx, query, token)
	return err
}

func (r *pgUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < $1`
	tag, err := r.pool.Exec(ctx, query, before)
	return int(tag.RowsAffected()), err
}

func (r *pgUserRepository) DeleteRevokedRefreshTokens(ctx context.Context) (int, error) {
	query := `DELETE FROM refresh_tokens WHERE revoked = TRUE`
	tag, err := r.pool.Exec(ctx, query)
	return int(tag.RowsAffected()), err
}

// ============================================
// PostgreSQL Team Repository
// ============================================

type pgTeamRepository struct {
	pool *pgxpool.Pool
}

const teamColumns = `id, name, owner_id, status, created_by, updated_by, created_at, updated_at`

func scanTeam(row pgx.Row) (*Team, error) {
	team := &Team{}
	err := row.Scan(
		&team.ID, &team.Name, &team.OwnerID, &team.Status,
		&team.CreatedBy, &team.UpdatedBy, &team.CreatedAt, &team.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return team, nil
}

func (r *pgTeamRepository) Create(ctx context.Context, team *Team) error {
	query := `
		INSERT INTO teams (name, owner_id, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		team.Name, team.OwnerID, team.Status, team.CreatedBy, team.UpdatedBy,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
	return translateConstraint(err)
}

func (r *pgTeamRepository) FindByID(ctx context.Context, id string) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE id = $1`
	return scanTeam(r.pool.QueryRow(ctx, query, id))
}

func (r *pgTeamRepository) FindByName(ctx context.Context, name string) (*Team, error) {
	query := `SELECT ` + teamColumns + ` FROM teams WHERE LOWER(name) = LOWER($1)`
	return scanTeam(r.pool.QueryRow(ctx, query, name))
}

func (r *pgTeamRepository) FindByUserID(ctx context.Context, userID string) ([]*Team, error) {
	query := `
		SELECT t.id, t.name, t.owner_id, t.status, t.created_by, t.updated_by, t.created_at, t.updated_at
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1 AND tm.status = 'ACTIVE' AND t.status <> 'DELETED'
		ORDER BY t.name
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

func (r *pgTeamRepository) Update(ctx context.Context, team *Team) error {
	query := `
		UPDATE teams SET name = $2, owner_id = $3, status = $4, updated_by = $5, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query, team.ID, team.Name, team.OwnerID, team.Status, team.UpdatedBy)
	return translateConstraint(err)
}

func (r *pgTeamRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	query := `UPDATE teams SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, updatedBy)
	return err
}

func (r *pgTeamRepository) AddMember(ctx context.Context, member *TeamMember) error {
	query := `
		INSERT INTO team_members (team_id, user_id, role, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, joined_at
	`
	err := r.pool.QueryRow(ctx, query, member.TeamID, member.UserID, member.Role, member.Status).
		Scan(&member.ID, &member.JoinedAt)
	return translateConstraint(err)
}

func (r *pgTeamRepository) FindMember(ctx context.Context, teamID, userID string) (*TeamMember, error) {
	query := `
		SELECT id, team_id, user_id, role, status, joined_at
		FROM team_members WHERE team_id = $1 AND user_id = $2
	`
	m := &TeamMember{}
	err := r.pool.QueryRow(ctx, query, teamID, userID).Scan(
		&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *pgTeamRepository) FindMembers(ctx context.Context, teamID string, activeOnly bool) ([]*TeamMember, error) {
	query := `
		SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.status, tm.joined_at,
		       u.id, u.email, u.full_name, u.role, u.status
		FROM team_members tm
		JOIN users u ON tm.user_id = u.id
		WHERE tm.team_id = $1
	`
	if activeOnly {
		query += ` AND tm.status = 'ACTIVE'`
	}
	query += ` ORDER BY tm.joined_at`

	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*TeamMember
	for rows.Next() {
		m := &TeamMember{User: &User{}}
		if err := rows.Scan(
			&m.ID, &m.TeamID, &m.UserID, &m.Role, &m.Status, &m.JoinedAt,
			&m.User.ID, &m.User.Email, &m.User.FullName, &m.User.Role, &m.User.Status,
		); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *pgTeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID, role string) error {
	query := `UPDATE team_members SET role = $3 WHERE team_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, teamID, userID, role)
	return err
}

func (r *pgTeamRepository) UpdateMemberStatus(ctx context.Context, teamID, userID, status string) error {
	query := `UPDATE team_members SET status = $3 WHERE team_id = $1 AND user_id = $2`
	_, err := r.pool.Exec(ctx, query, teamID, userID, status)
	return err
}

func (r *pgTeamRepository) UpdateMembersStatus(ctx context.Context, teamID, fromStatus, toStatus string) error {
	query := `UPDATE team_members SET status = $3 WHERE team_id = $1 AND status = $2`
	_, err := r.pool.Exec(ctx, query, teamID, fromStatus, toStatus)
	return err
}

func (r *pgTeamRepository) CountActiveMembers(ctx context.Context, teamID string) (int, error) {
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND status = 'ACTIVE'`
	var count int
	err := r.pool.QueryRow(ctx, query, teamID).Scan(&count)
	return count, err
}

func (r *pgTeamRepository) CountActiveMembersWithRole(ctx context.Context, teamID, role string) (int, error) {
	query := `SELECT COUNT(*) FROM team_members WHERE team_id = $1 AND role = $2 AND status = 'ACTIVE'`
	var count int
	err := r.pool.QueryRow(ctx, query, teamID, role).Scan(&count)
	return count, err
}

// ============================================
// PostgreSQL Project Repository
// ============================================

type pgProjectRepository struct {
	pool *pgxpool.Pool
}

const projectColumns = `id, name, description, team_id, status, start_date, end_date, created_by, updated_by, created_at, updated_at`

func scanProject(row pgx.Row) (*Project, error) {
	p := &Project{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.TeamID, &p.Status,
		&p.StartDate, &p.EndDate, &p.CreatedBy, &p.UpdatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *pgProjectRepository) Create(ctx context.Context, project *Project) error {
	query := `
		INSERT INTO projects (name, description, team_id, status, start_date, end_date, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		project.Name, project.Description, project.TeamID, project.Status,
		project.StartDate, project.EndDate, project.CreatedBy, project.UpdatedBy,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	return translateConstraint(err)
}

func (r *pgProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.pool.QueryRow(ctx, query, id))
}

func (r *pgProjectRepository) FindByTeamID(ctx context.Context, teamID string) ([]*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE team_id = $1 AND status <> 'DELETED' ORDER BY name`
	rows, err := r.pool.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (r *pgProjectRepository) FindByName(ctx context.Context, teamID, name string) (*Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE team_id = $1 AND LOWER(name) = LOWER($2)`
	return scanProject(r.pool.QueryRow(ctx, query, teamID, name))
}

func (r *pgProjectRepository) Update(ctx context.Context, project *Project) error {
	query := `
		UPDATE projects SET name = $2, description = $3, status = $4,
			start_date = $5, end_date = $6, updated_by = $7, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		project.ID, project.Name, project.Description, project.Status,
		project.StartDate, project.EndDate, project.UpdatedBy,
	)
	return translateConstraint(err)
}

func (r *pgProjectRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	query := `UPDATE projects SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, updatedBy)
	return err
}

// ============================================
// PostgreSQL Task Repository
// ============================================

type pgTaskRepository struct {
	pool *pgxpool.Pool
}

const taskColumns = `id, title, description, project_id, status, priority, assigned_to, due_date, completed_at, created_by, updated_by, created_at, updated_at`

func scanTask(row pgx.Row) (*Task, error) {
	t := &Task{}
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.ProjectID, &t.Status, &t.Priority,
		&t.AssignedTo, &t.DueDate, &t.CompletedAt,
		&t.CreatedBy, &t.UpdatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *pgTaskRepository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (title, description, project_id, status, priority, assigned_to, due_date, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		task.Title, task.Description, task.ProjectID, task.Status, task.Priority,
		task.AssignedTo, task.DueDate, task.CreatedBy, task.UpdatedBy,
	).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	return translateConstraint(err)
}

func (r *pgTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

func (r *pgTaskRepository) FindByProjectID(ctx context.Context, projectID string, filters *TaskFilters) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 AND status <> 'DELETED'`
	args := []interface{}{projectID}
	argNum := 1

	if filters != nil {
		if len(filters.Status) > 0 {
			argNum++
			query += fmt.Sprintf(" AND status = ANY($%d)", argNum)
			args = append(args, filters.Status)
		}
		if len(filters.Priority) > 0 {
			argNum++
			query += fmt.Sprintf(" AND priority = ANY($%d)", argNum)
			args = append(args, filters.Priority)
		}
		if filters.AssignedTo != nil {
			argNum++
			query += fmt.Sprintf(" AND assigned_to = $%d", argNum)
			args = append(args, *filters.AssignedTo)
		}
		if filters.Search != "" {
			argNum++
			query += fmt.Sprintf(" AND LOWER(title) LIKE LOWER($%d)", argNum)
			args = append(args, "%"+filters.Search+"%")
		}
	}

	query += " ORDER BY created_at DESC"

	if filters != nil && filters.Limit > 0 {
		argNum++
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
	}
	if filters != nil && filters.Offset > 0 {
		argNum++
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *pgTaskRepository) FindByTitle(ctx context.Context, projectID, title string) (*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE project_id = $1 AND LOWER(title) = LOWER($2)`
	return scanTask(r.pool.QueryRow(ctx, query, projectID, title))
}

func (r *pgTaskRepository) FindByAssignee(ctx context.Context, userID string) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE assigned_to = $1 AND status <> 'DELETED' ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *pgTaskRepository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
			assigned_to = $6, due_date = $7, completed_at = $8, updated_by = $9, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.pool.Exec(ctx, query,
		task.ID, task.Title, task.Description, task.Status, task.Priority,
		task.AssignedTo, task.DueDate, task.CompletedAt, task.UpdatedBy,
	)
	return translateConstraint(err)
}

func (r *pgTaskRepository) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, updatedBy string) error {
	query := `UPDATE tasks SET status = $2, completed_at = $3, updated_by = $4, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, completedAt, updatedBy)
	return err
}

// ============================================
// PostgreSQL Comment Repository
// ============================================

type pgCommentRepository struct {
	pool *pgxpool.Pool
}

func (r *pgCommentRepository) Create(ctx context.Context, comment *Comment) error {
	query := `
		INSERT INTO comments (task_id, author_id, content, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`
	return r.pool.QueryRow(ctx, query,
		comment.TaskID, comment.AuthorID, comment.Content, comment.Status,
		comment.CreatedBy, comment.UpdatedBy,
	).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt)
}

func (r *pgCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	query := `
		SELECT id, task_id, author_id, content, status, created_by, updated_by, created_at, updated_at
		FROM comments WHERE id = $1
	`
	c := &Comment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.Status,
		&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *pgCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error) {
	query := `
		SELECT c.id, c.task_id, c.author_id, c.content, c.status,
		       c.created_by, c.updated_by, c.created_at, c.updated_at,
		       u.id, u.email, u.full_name
		FROM comments c
		JOIN users u ON c.author_id = u.id
		WHERE c.task_id = $1 AND c.status <> 'DELETED'
		ORDER BY c.created_at
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*Comment
	for rows.Next() {
		c := &Comment{Author: &User{}}
		if err := rows.Scan(
			&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.Status,
			&c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt,
			&c.Author.ID, &c.Author.Email, &c.Author.FullName,
		); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (r *pgCommentRepository) Update(ctx context.Context, comment *Comment) error {
	query := `UPDATE comments SET content = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, comment.ID, comment.Content, comment.UpdatedBy)
	return err
}

func (r *pgCommentRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	query := `UPDATE comments SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, updatedBy)
	return err
}

// ============================================
// PostgreSQL Attachment Repository
// ============================================

type pgAttachmentRepository struct {
	pool *pgxpool.Pool
}

func (r *pgAttachmentRepository) Create(ctx context.Context, attachment *Attachment) error {
	query := `
		INSERT INTO attachments (task_id, author_id, file_name, object_key, content_type, size, status, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		attachment.TaskID, attachment.AuthorID, attachment.FileName, attachment.ObjectKey,
		attachment.ContentType, attachment.Size, attachment.Status,
		attachment.CreatedBy, attachment.UpdatedBy,
	).Scan(&attachment.ID, &attachment.CreatedAt, &attachment.UpdatedAt)
	return translateConstraint(err)
}

func (r *pgAttachmentRepository) FindByID(ctx context.Context, id string) (*Attachment, error) {
	query := `
		SELECT id, task_id, author_id, file_name, object_key, content_type, size, status,
		       created_by, updated_by, created_at, updated_at
		FROM attachments WHERE id = $1
	`
	a := &Attachment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&a.ID, &a.TaskID, &a.AuthorID, &a.FileName, &a.ObjectKey,
		&a.ContentType, &a.Size, &a.Status,
		&a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *pgAttachmentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Attachment, error) {
	query := `
		SELECT id, task_id, author_id, file_name, object_key, content_type, size, status,
		       created_by, updated_by, created_at, updated_at
		FROM attachments WHERE task_id = $1 AND status <> 'DELETED'
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var attachments []*Attachment
	for rows.Next() {
		a := &Attachment{}
		if err := rows.Scan(
			&a.ID, &a.TaskID, &a.AuthorID, &a.FileName, &a.ObjectKey,
			&a.ContentType, &a.Size, &a.Status,
			&a.CreatedBy, &a.UpdatedBy, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func (r *pgAttachmentRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	query := `UPDATE attachments SET status = $2, updated_by = $3, updated_at = NOW() WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, id, status, updatedBy)
	return err
}
