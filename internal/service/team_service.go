package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/omarhammouda0/task-management-system/internal/apperrors"
	"github.com/omarhammouda0/task-management-system/internal/authz"
	"github.com/omarhammouda0/task-management-system/internal/lifecycle"
	"github.com/omarhammouda0/task-management-system/internal/repository"
	"github.com/omarhammouda0/task-management-system/internal/types"
)

type TeamService struct {
	teams  repository.TeamRepository
	users  repository.UserRepository
	logger *zap.SugaredLogger
}

func NewTeamService(teams repository.TeamRepository, users repository.UserRepository, logger *zap.SugaredLogger) *TeamService {
	return &TeamService{teams: teams, users: users, logger: logger}
}

// Create makes a team with a globally unique (case-insensitive) name and
// enrolls the creator as its OWNER.
func (s *TeamService) Create(ctx context.Context, actor *repository.User, name string) (*repository.Team, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("team name must not be blank")
	}

	existing, err := s.teams.FindByName(ctx, name)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up team name")
	}
	if existing != nil {
		return nil, apperrors.Duplicate("team", name)
	}

	team := &repository.Team{
		Name:    name,
		OwnerID: actor.ID,
		Status:  types.TeamActive,
	}
	team.CreatedBy = actor.ID
	team.UpdatedBy = actor.ID
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, persistErr(err, "team", name)
	}

	owner := &repository.TeamMember{
		TeamID: team.ID,
		UserID: actor.ID,
		Role:   types.MemberRoleOwner,
		Status: types.MemberActive,
	}
	if err := s.teams.AddMember(ctx, owner); err != nil {
		return nil, apperrors.Internal(err, "failed to enroll team owner")
	}

	s.logger.Infow("team created", "actorId", actor.ID, "teamId", team.ID)
	return team, nil
}

// Get returns a team for any actor with a membership row on it (any status)
// or a system admin.
func (s *TeamService) Get(ctx context.Context, actor *repository.User, teamID string) (*repository.Team, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	team, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessTeam(a, membership) {
		return nil, apperrors.AccessDenied("not a member of this team")
	}
	return team, nil
}

// ListMine returns the teams the actor holds an ACTIVE membership in.
func (s *TeamService) ListMine(ctx context.Context, actor *repository.User) ([]*repository.Team, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	teams, err := s.teams.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list teams")
	}
	return teams, nil
}

// Update renames a team; OWNER or system admin.
func (s *TeamService) Update(ctx context.Context, actor *repository.User, teamID, name string) (*repository.Team, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	team, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanMutateTeam(a, membership) {
		return nil, apperrors.AccessDenied("only the team owner can update the team")
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("team name must not be blank")
	}
	if !strings.EqualFold(name, team.Name) {
		existing, err := s.teams.FindByName(ctx, name)
		if err != nil {
			return nil, apperrors.Internal(err, "failed to look up team name")
		}
		if existing != nil {
			return nil, apperrors.Duplicate("team", name)
		}
	}

	team.Name = name
	team.UpdatedBy = actor.ID
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, persistErr(err, "team", name)
	}

	s.logger.Infow("team updated", "actorId", actor.ID, "teamId", team.ID)
	return team, nil
}

// Delete soft-deletes the team and parks its ACTIVE members as INACTIVE so a
// later restore can bring them back.
func (s *TeamService) Delete(ctx context.Context, actor *repository.User, teamID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	team, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return err
	}
	if !authz.CanMutateTeam(a, membership) {
		return apperrors.AccessDenied("only the team owner can delete the team")
	}
	if err := lifecycle.ValidateTeamTransition(team.Status, types.TeamDeleted); err != nil {
		return err
	}

	if err := s.teams.UpdateStatus(ctx, teamID, types.TeamDeleted, actor.ID); err != nil {
		return apperrors.Internal(err, "failed to delete team")
	}
	if err := s.teams.UpdateMembersStatus(ctx, teamID, types.MemberActive, types.MemberInactive); err != nil {
		return apperrors.Internal(err, "failed to park team members")
	}

	s.logger.Infow("team deleted", "actorId", actor.ID, "teamId", teamID)
	return nil
}

// Restore brings a DELETED team back; system admin only. INACTIVE members
// return to ACTIVE in bulk.
func (s *TeamService) Restore(ctx context.Context, actor *repository.User, teamID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	if !a.IsAdmin() {
		return apperrors.AccessDenied("restoring a team requires the admin role")
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return apperrors.Internal(err, "failed to look up team")
	}
	if team == nil {
		return apperrors.NotFound("team")
	}
	if err := lifecycle.ValidateTeamTransition(team.Status, types.TeamActive); err != nil {
		return err
	}

	if err := s.teams.UpdateStatus(ctx, teamID, types.TeamActive, actor.ID); err != nil {
		return apperrors.Internal(err, "failed to restore team")
	}
	if err := s.teams.UpdateMembersStatus(ctx, teamID, types.MemberInactive, types.MemberActive); err != nil {
		return apperrors.Internal(err, "failed to reactivate team members")
	}

	s.logger.Infow("team restored", "actorId", actor.ID, "teamId", teamID)
	return nil
}

// AddMember enrolls an active user; OWNER or system admin. OWNER is never an
// assignable role, the single owner is fixed at creation.
func (s *TeamService) AddMember(ctx context.Context, actor *repository.User, teamID, userID, role string) (*repository.TeamMember, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageMembers(a, membership) {
		return nil, apperrors.AccessDenied("only the team owner can manage members")
	}

	if role == "" {
		role = types.MemberRoleMember
	}
	if !types.IsValidMemberRole(role) {
		return nil, apperrors.InvalidInput("unknown member role " + role)
	}
	if role == types.MemberRoleOwner {
		return nil, apperrors.InvalidInput("a team has a single owner, assigned at creation")
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up user")
	}
	if user == nil || !types.UserNotDeleted(user.Status) {
		return nil, apperrors.NotFound("user")
	}
	if user.Status != types.UserActive {
		return nil, apperrors.InvalidInput("user account is not active")
	}

	existing, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up membership")
	}
	if existing != nil {
		return nil, apperrors.Duplicate("team member", userID)
	}

	member := &repository.TeamMember{
		TeamID: teamID,
		UserID: userID,
		Role:   role,
		Status: types.MemberActive,
	}
	if err := s.teams.AddMember(ctx, member); err != nil {
		return nil, persistErr(err, "team member", userID)
	}

	s.logger.Infow("team member added", "actorId", actor.ID, "teamId", teamID, "userId", userID, "role", role)
	return member, nil
}

// ListMembers requires an ACTIVE membership (or system admin), unlike plain
// team reads which accept any membership row.
func (s *TeamService) ListMembers(ctx context.Context, actor *repository.User, teamID string) ([]*repository.TeamMember, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanViewMembers(a, membership) {
		return nil, apperrors.AccessDenied("listing members requires an active membership")
	}
	members, err := s.teams.FindMembers(ctx, teamID, false)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to list members")
	}
	return members, nil
}

// UpdateMemberRole changes a member's team role; OWNER or system admin, never
// against yourself, and the owner seat cannot be handed out or vacated here.
func (s *TeamService) UpdateMemberRole(ctx context.Context, actor *repository.User, teamID, userID, role string) (*repository.TeamMember, error) {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return nil, err
	}
	_, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanManageMembers(a, membership) {
		return nil, apperrors.AccessDenied("only the team owner can manage members")
	}
	if authz.IsSelf(a, userID) {
		return nil, apperrors.ErrSelfOperation
	}
	if !types.IsValidMemberRole(role) {
		return nil, apperrors.InvalidInput("unknown member role " + role)
	}
	if role == types.MemberRoleOwner {
		return nil, apperrors.InvalidInput("a team has a single owner, assigned at creation")
	}

	member, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		return nil, apperrors.Internal(err, "failed to look up membership")
	}
	if member == nil {
		return nil, apperrors.NotFound("team member")
	}
	if member.Role == types.MemberRoleOwner {
		return nil, apperrors.ErrLastOwnerProtected
	}

	if err := s.teams.UpdateMemberRole(ctx, teamID, userID, role); err != nil {
		return nil, apperrors.Internal(err, "failed to update member role")
	}
	member.Role = role

	s.logger.Infow("team member role updated", "actorId", actor.ID, "teamId", teamID, "userId", userID, "role", role)
	return member, nil
}

// RemoveMember marks a member REMOVED; OWNER or system admin, never against
// yourself, never against the owner.
func (s *TeamService) RemoveMember(ctx context.Context, actor *repository.User, teamID, userID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	_, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return err
	}
	if !authz.CanManageMembers(a, membership) {
		return apperrors.AccessDenied("only the team owner can manage members")
	}
	if authz.IsSelf(a, userID) {
		return apperrors.ErrSelfOperation
	}

	member, err := s.teams.FindMember(ctx, teamID, userID)
	if err != nil {
		return apperrors.Internal(err, "failed to look up membership")
	}
	if member == nil {
		return apperrors.NotFound("team member")
	}
	if member.Role == types.MemberRoleOwner {
		return apperrors.ErrLastOwnerProtected
	}
	if err := lifecycle.ValidateMemberTransition(member.Status, types.MemberRemoved); err != nil {
		return err
	}

	if err := s.teams.UpdateMemberStatus(ctx, teamID, userID, types.MemberRemoved); err != nil {
		return apperrors.Internal(err, "failed to remove member")
	}

	s.logger.Infow("team member removed", "actorId", actor.ID, "teamId", teamID, "userId", userID)
	return nil
}

// Leave lets a member exit their own team. The owner cannot leave, and the
// last active member cannot leave either.
func (s *TeamService) Leave(ctx context.Context, actor *repository.User, teamID string) error {
	a := actorOf(actor)
	if err := authz.RequireActive(a); err != nil {
		return err
	}
	_, membership, err := s.resolve(ctx, a, teamID)
	if err != nil {
		return err
	}
	if !authz.CanLeaveTeam(membership) {
		return apperrors.AccessDenied("leaving requires an active membership")
	}
	if membership.Role == types.MemberRoleOwner {
		return apperrors.ErrLastOwnerProtected
	}

	active, err := s.teams.CountActiveMembers(ctx, teamID)
	if err != nil {
		return apperrors.Internal(err, "failed to count members")
	}
	if active <= 1 {
		return apperrors.AccessDenied("the last active member cannot leave the team")
	}
	if err := lifecycle.ValidateMemberTransition(membership.Status, types.MemberInactive); err != nil {
		return err
	}

	if err := s.teams.UpdateMemberStatus(ctx, teamID, actor.ID, types.MemberInactive); err != nil {
		return apperrors.Internal(err, "failed to leave team")
	}

	s.logger.Infow("team member left", "actorId", actor.ID, "teamId", teamID)
	return nil
}

// resolve loads the team and the actor's membership row. A missing or deleted
// team reads as not found unless the actor is a system admin.
func (s *TeamService) resolve(ctx context.Context, a authz.Actor, teamID string) (*repository.Team, *authz.Membership, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up team")
	}
	if team == nil {
		return nil, nil, apperrors.NotFound("team")
	}
	if !types.TeamNotDeleted(team.Status) && !a.IsAdmin() {
		return nil, nil, apperrors.NotFound("team")
	}
	member, err := s.teams.FindMember(ctx, teamID, a.ID)
	if err != nil {
		return nil, nil, apperrors.Internal(err, "failed to look up membership")
	}
	return team, membershipOf(member), nil
}
