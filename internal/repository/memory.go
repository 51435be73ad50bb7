package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// In-memory implementations used by tests and as a dev fallback when no
// DATABASE_URL is configured. They enforce the same unique constraints as the
// migrations so that duplicate handling behaves identically in both modes.

// ============================================
// In-Memory User Repository
// ============================================

type inMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[string]*User
	tokens map[string]*RefreshToken
}

func newInMemoryUserRepository() *inMemoryUserRepository {
	return &inMemoryUserRepository{
		users:  make(map[string]*User),
		tokens: make(map[string]*RefreshToken),
	}
}

func copyUser(u *User) *User {
	cp := *u
	return &cp
}

func (r *inMemoryUserRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("%w: users_email_key", ErrDuplicate)
		}
	}
	user.ID = uuid.NewString()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *inMemoryUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(u), nil
}

func (r *inMemoryUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (r *inMemoryUserRepository) FindAll(ctx context.Context) ([]*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]*User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, copyUser(u))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Email < users[j].Email })
	return users, nil
}

func (r *inMemoryUserRepository) Update(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.users {
		if id != user.ID && strings.EqualFold(existing.Email, user.Email) {
			return fmt.Errorf("%w: users_email_key", ErrDuplicate)
		}
	}
	user.UpdatedAt = time.Now().UTC()
	r.users[user.ID] = copyUser(user)
	return nil
}

func (r *inMemoryUserRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Status = status
		u.UpdatedBy = updatedBy
		u.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *inMemoryUserRepository) CountOtherActiveAdmins(ctx context.Context, excludeUserID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, u := range r.users {
		if u.ID != excludeUserID && u.Role == "ADMIN" && u.Status == "ACTIVE" {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryUserRepository) SaveRefreshToken(ctx context.Context, token *RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tokens[token.Token]; exists {
		return fmt.Errorf("%w: refresh_tokens_token_key", ErrDuplicate)
	}
	token.ID = uuid.NewString()
	token.CreatedAt = time.Now().UTC()
	cp := *token
	r.tokens[token.Token] = &cp
	return nil
}

func (r *inMemoryUserRepository) FindRefreshToken(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, nil
	}
	cp := *rt
	return &cp, nil
}

func (r *inMemoryUserRepository) RevokeRefreshToken(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rt, ok := r.tokens[token]
	if !ok || rt.Revoked {
		return false, nil
	}
	rt.Revoked = true
	return true, nil
}

func (r *inMemoryUserRepository) DeleteRefreshToken(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *inMemoryUserRepository) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for key, rt := range r.tokens {
		if rt.ExpiresAt.Before(before) {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

func (r *inMemoryUserRepository) DeleteRevokedRefreshTokens(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for key, rt := range r.tokens {
		if rt.Revoked {
			delete(r.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}

// ============================================
// In-Memory Team Repository
// ============================================

type inMemoryTeamRepository struct {
	mu      sync.RWMutex
	teams   map[string]*Team
	members map[string]*TeamMember
	users   *inMemoryUserRepository
}

func newInMemoryTeamRepository(users *inMemoryUserRepository) *inMemoryTeamRepository {
	return &inMemoryTeamRepository{
		teams:   make(map[string]*Team),
		members: make(map[string]*TeamMember),
		users:   users,
	}
}

func memberKey(teamID, userID string) string {
	return teamID + "/" + userID
}

func copyTeam(t *Team) *Team {
	cp := *t
	cp.Members = nil
	return &cp
}

func (r *inMemoryTeamRepository) Create(ctx context.Context, team *Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.teams {
		if strings.EqualFold(existing.Name, team.Name) {
			return fmt.Errorf("%w: teams_name_key", ErrDuplicate)
		}
	}
	team.ID = uuid.NewString()
	now := time.Now().UTC()
	team.CreatedAt = now
	team.UpdatedAt = now
	r.teams[team.ID] = copyTeam(team)
	return nil
}

func (r *inMemoryTeamRepository) FindByID(ctx context.Context, id string) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.teams[id]
	if !ok {
		return nil, nil
	}
	return copyTeam(t), nil
}

func (r *inMemoryTeamRepository) FindByName(ctx context.Context, name string) (*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.teams {
		if strings.EqualFold(t.Name, name) {
			return copyTeam(t), nil
		}
	}
	return nil, nil
}

func (r *inMemoryTeamRepository) FindByUserID(ctx context.Context, userID string) ([]*Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var teams []*Team
	for _, m := range r.members {
		if m.UserID != userID || m.Status != "ACTIVE" {
			continue
		}
		if t, ok := r.teams[m.TeamID]; ok && t.Status != "DELETED" {
			teams = append(teams, copyTeam(t))
		}
	}
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return teams, nil
}

func (r *inMemoryTeamRepository) Update(ctx context.Context, team *Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.teams {
		if id != team.ID && strings.EqualFold(existing.Name, team.Name) {
			return fmt.Errorf("%w: teams_name_key", ErrDuplicate)
		}
	}
	team.UpdatedAt = time.Now().UTC()
	r.teams[team.ID] = copyTeam(team)
	return nil
}

func (r *inMemoryTeamRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.teams[id]; ok {
		t.Status = status
		t.UpdatedBy = updatedBy
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

func (r *inMemoryTeamRepository) AddMember(ctx context.Context, member *TeamMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memberKey(member.TeamID, member.UserID)
	if _, exists := r.members[key]; exists {
		return fmt.Errorf("%w: team_members_team_id_user_id_key", ErrDuplicate)
	}
	member.ID = uuid.NewString()
	member.JoinedAt = time.Now().UTC()
	cp := *member
	cp.User = nil
	r.members[key] = &cp
	return nil
}

func (r *inMemoryTeamRepository) FindMember(ctx context.Context, teamID, userID string) (*TeamMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.members[memberKey(teamID, userID)]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *inMemoryTeamRepository) FindMembers(ctx context.Context, teamID string, activeOnly bool) ([]*TeamMember, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var members []*TeamMember
	for _, m := range r.members {
		if m.TeamID != teamID {
			continue
		}
		if activeOnly && m.Status != "ACTIVE" {
			continue
		}
		cp := *m
		if r.users != nil {
			if u, _ := r.users.FindByID(ctx, m.UserID); u != nil {
				cp.User = u
			}
		}
		members = append(members, &cp)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (r *inMemoryTeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[memberKey(teamID, userID)]; ok {
		m.Role = role
	}
	return nil
}

func (r *inMemoryTeamRepository) UpdateMemberStatus(ctx context.Context, teamID, userID, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.members[memberKey(teamID, userID)]; ok {
		m.Status = status
	}
	return nil
}

func (r *inMemoryTeamRepository) UpdateMembersStatus(ctx context.Context, teamID, fromStatus, toStatus string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.TeamID == teamID && m.Status == fromStatus {
			m.Status = toStatus
		}
	}
	return nil
}

func (r *inMemoryTeamRepository) CountActiveMembers(ctx context.Context, teamID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, m := range r.members {
		if m.TeamID == teamID && m.Status == "ACTIVE" {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryTeamRepository) CountActiveMembersWithRole(ctx context.Context, teamID, role string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, m := range r.members {
		if m.TeamID == teamID && m.Role == role && m.Status == "ACTIVE" {
			count++
		}
	}
	return count, nil
}

// ============================================
// In-Memory Project Repository
// ============================================

type inMemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

func newInMemoryProjectRepository() *inMemoryProjectRepository {
	return &inMemoryProjectRepository{projects: make(map[string]*Project)}
}

func copyProject(p *Project) *Project {
	cp := *p
	return &cp
}

func (r *inMemoryProjectRepository) Create(ctx context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.projects {
		if existing.TeamID == project.TeamID && strings.EqualFold(existing.Name, project.Name) {
			return fmt.Errorf("%w: projects_team_id_name_key", ErrDuplicate)
		}
	}
	project.ID = uuid.NewString()
	now := time.Now().UTC()
	project.CreatedAt = now
	project.UpdatedAt = now
	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *inMemoryProjectRepository) FindByID(ctx context.Context, id string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	return copyProject(p), nil
}

func (r *inMemoryProjectRepository) FindByTeamID(ctx context.Context, teamID string) ([]*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var projects []*Project
	for _, p := range r.projects {
		if p.TeamID == teamID && p.Status != "DELETED" {
			projects = append(projects, copyProject(p))
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

func (r *inMemoryProjectRepository) FindByName(ctx context.Context, teamID, name string) (*Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.projects {
		if p.TeamID == teamID && strings.EqualFold(p.Name, name) {
			return copyProject(p), nil
		}
	}
	return nil, nil
}

func (r *inMemoryProjectRepository) Update(ctx context.Context, project *Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.projects {
		if id != project.ID && existing.TeamID == project.TeamID && strings.EqualFold(existing.Name, project.Name) {
			return fmt.Errorf("%w: projects_team_id_name_key", ErrDuplicate)
		}
	}
	project.UpdatedAt = time.Now().UTC()
	r.projects[project.ID] = copyProject(project)
	return nil
}

func (r *inMemoryProjectRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.projects[id]; ok {
		p.Status = status
		p.UpdatedBy = updatedBy
		p.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// ============================================
// In-Memory Task Repository
// ============================================

type inMemoryTaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func newInMemoryTaskRepository() *inMemoryTaskRepository {
	return &inMemoryTaskRepository{tasks: make(map[string]*Task)}
}

func copyTask(t *Task) *Task {
	cp := *t
	cp.Assignee = nil
	return &cp
}

func (r *inMemoryTaskRepository) Create(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tasks {
		if existing.ProjectID == task.ProjectID && strings.EqualFold(existing.Title, task.Title) {
			return fmt.Errorf("%w: tasks_project_id_title_key", ErrDuplicate)
		}
	}
	task.ID = uuid.NewString()
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *inMemoryTaskRepository) FindByID(ctx context.Context, id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, nil
	}
	return copyTask(t), nil
}

func (r *inMemoryTaskRepository) FindByProjectID(ctx context.Context, projectID string, filters *TaskFilters) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*Task
	for _, t := range r.tasks {
		if t.ProjectID != projectID || t.Status == "DELETED" {
			continue
		}
		if filters != nil && !matchesFilters(t, filters) {
			continue
		}
		tasks = append(tasks, copyTask(t))
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	if filters != nil {
		if filters.Offset > 0 {
			if filters.Offset >= len(tasks) {
				return nil, nil
			}
			tasks = tasks[filters.Offset:]
		}
		if filters.Limit > 0 && filters.Limit < len(tasks) {
			tasks = tasks[:filters.Limit]
		}
	}
	return tasks, nil
}

func matchesFilters(t *Task, f *TaskFilters) bool {
	if len(f.Status) > 0 && !containsFold(f.Status, t.Status) {
		return false
	}
	if len(f.Priority) > 0 && !containsFold(f.Priority, t.Priority) {
		return false
	}
	if f.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *f.AssignedTo) {
		return false
	}
	if f.Search != "" && !strings.Contains(strings.ToLower(t.Title), strings.ToLower(f.Search)) {
		return false
	}
	return true
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

func (r *inMemoryTaskRepository) FindByTitle(ctx context.Context, projectID, title string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tasks {
		if t.ProjectID == projectID && strings.EqualFold(t.Title, title) {
			return copyTask(t), nil
		}
	}
	return nil, nil
}

func (r *inMemoryTaskRepository) FindByAssignee(ctx context.Context, userID string) ([]*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var tasks []*Task
	for _, t := range r.tasks {
		if t.AssignedTo != nil && *t.AssignedTo == userID && t.Status != "DELETED" {
			tasks = append(tasks, copyTask(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt.After(tasks[j].CreatedAt) })
	return tasks, nil
}

func (r *inMemoryTaskRepository) Update(ctx context.Context, task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.tasks {
		if id != task.ID && existing.ProjectID == task.ProjectID && strings.EqualFold(existing.Title, task.Title) {
			return fmt.Errorf("%w: tasks_project_id_title_key", ErrDuplicate)
		}
	}
	task.UpdatedAt = time.Now().UTC()
	r.tasks[task.ID] = copyTask(task)
	return nil
}

func (r *inMemoryTaskRepository) UpdateStatus(ctx context.Context, id, status string, completedAt *time.Time, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tasks[id]; ok {
		t.Status = status
		t.CompletedAt = completedAt
		t.UpdatedBy = updatedBy
		t.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// ============================================
// In-Memory Comment Repository
// ============================================

type inMemoryCommentRepository struct {
	mu       sync.RWMutex
	comments map[string]*Comment
}

func newInMemoryCommentRepository() *inMemoryCommentRepository {
	return &inMemoryCommentRepository{comments: make(map[string]*Comment)}
}

func copyComment(c *Comment) *Comment {
	cp := *c
	cp.Author = nil
	return &cp
}

func (r *inMemoryCommentRepository) Create(ctx context.Context, comment *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.ID = uuid.NewString()
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.comments[comment.ID] = copyComment(comment)
	return nil
}

func (r *inMemoryCommentRepository) FindByID(ctx context.Context, id string) (*Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, nil
	}
	return copyComment(c), nil
}

func (r *inMemoryCommentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var comments []*Comment
	for _, c := range r.comments {
		if c.TaskID == taskID && c.Status != "DELETED" {
			comments = append(comments, copyComment(c))
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].CreatedAt.Before(comments[j].CreatedAt) })
	return comments, nil
}

func (r *inMemoryCommentRepository) Update(ctx context.Context, comment *Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	comment.UpdatedAt = time.Now().UTC()
	r.comments[comment.ID] = copyComment(comment)
	return nil
}

func (r *inMemoryCommentRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		c.Status = status
		c.UpdatedBy = updatedBy
		c.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// ============================================
// In-Memory Attachment Repository
// ============================================

type inMemoryAttachmentRepository struct {
	mu          sync.RWMutex
	attachments map[string]*Attachment
}

func newInMemoryAttachmentRepository() *inMemoryAttachmentRepository {
	return &inMemoryAttachmentRepository{attachments: make(map[string]*Attachment)}
}

func copyAttachment(a *Attachment) *Attachment {
	cp := *a
	return &cp
}

func (r *inMemoryAttachmentRepository) Create(ctx context.Context, attachment *Attachment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.attachments {
		if existing.ObjectKey == attachment.ObjectKey {
			return fmt.Errorf("%w: attachments_object_key_key", ErrDuplicate)
		}
	}
	attachment.ID = uuid.NewString()
	now := time.Now().UTC()
	attachment.CreatedAt = now
	attachment.UpdatedAt = now
	r.attachments[attachment.ID] = copyAttachment(attachment)
	return nil
}

func (r *inMemoryAttachmentRepository) FindByID(ctx context.Context, id string) (*Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attachments[id]
	if !ok {
		return nil, nil
	}
	return copyAttachment(a), nil
}

func (r *inMemoryAttachmentRepository) FindByTaskID(ctx context.Context, taskID string) ([]*Attachment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var attachments []*Attachment
	for _, a := range r.attachments {
		if a.TaskID == taskID && a.Status != "DELETED" {
			attachments = append(attachments, copyAttachment(a))
		}
	}
	sort.Slice(attachments, func(i, j int) bool { return attachments[i].CreatedAt.Before(attachments[j].CreatedAt) })
	return attachments, nil
}

func (r *inMemoryAttachmentRepository) UpdateStatus(ctx context.Context, id, status, updatedBy string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.attachments[id]; ok {
		a.Status = status
		a.UpdatedBy = updatedBy
		a.UpdatedAt = time.Now().UTC()
	}
	return nil
}
