package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/omarhammouda0/task-management-system/internal/types"
)

func activeActor(role string) Actor {
	return Actor{ID: "actor-1", Role: role, Status: types.UserActive}
}

func membership(role, status string) *Membership {
	return &Membership{TeamID: "team-1", UserID: "actor-1", Role: role, Status: status}
}

func TestRequireActive(t *testing.T) {
	assert.NoError(t, RequireActive(activeActor(types.RoleMember)))

	for _, status := range []string{types.UserInactive, types.UserSuspended, types.UserDeleted} {
		a := Actor{ID: "u", Role: types.RoleAdmin, Status: status}
		assert.Error(t, RequireActive(a), "status %s must be refused", status)
	}
}

func TestCanAccessTeam(t *testing.T) {
	member := activeActor(types.RoleMember)

	assert.False(t, CanAccessTeam(member, nil))
	assert.True(t, CanAccessTeam(member, membership(types.MemberRoleMember, types.MemberActive)))

	// Access is status-agnostic: removed and inactive members still read.
	assert.True(t, CanAccessTeam(member, membership(types.MemberRoleMember, types.MemberRemoved)))
	assert.True(t, CanAccessTeam(member, membership(types.MemberRoleMember, types.MemberInactive)))

	// System admins need no membership at all.
	assert.True(t, CanAccessTeam(activeActor(types.RoleAdmin), nil))
}

func TestCanViewMembersRequiresActiveMembership(t *testing.T) {
	member := activeActor(types.RoleMember)

	assert.True(t, CanViewMembers(member, membership(types.MemberRoleMember, types.MemberActive)))
	assert.False(t, CanViewMembers(member, membership(types.MemberRoleMember, types.MemberRemoved)))
	assert.False(t, CanViewMembers(member, nil))
	assert.True(t, CanViewMembers(activeActor(types.RoleAdmin), nil))
}

func TestCanMutateTeam(t *testing.T) {
	member := activeActor(types.RoleMember)

	assert.True(t, CanMutateTeam(member, membership(types.MemberRoleOwner, types.MemberActive)))
	assert.False(t, CanMutateTeam(member, membership(types.MemberRoleAdmin, types.MemberActive)))
	assert.False(t, CanMutateTeam(member, membership(types.MemberRoleMember, types.MemberActive)))
	assert.True(t, CanMutateTeam(activeActor(types.RoleAdmin), nil))
}

func TestCanManageMembersIsOwnerOnly(t *testing.T) {
	member := activeActor(types.RoleMember)

	assert.True(t, CanManageMembers(member, membership(types.MemberRoleOwner, types.MemberActive)))
	// The ADMIN member role moderates content but does not manage membership.
	assert.False(t, CanManageMembers(member, membership(types.MemberRoleAdmin, types.MemberActive)))
	assert.False(t, CanManageMembers(member, membership(types.MemberRoleMember, types.MemberActive)))
}

func TestCanLeaveTeam(t *testing.T) {
	assert.True(t, CanLeaveTeam(membership(types.MemberRoleMember, types.MemberActive)))
	assert.False(t, CanLeaveTeam(membership(types.MemberRoleMember, types.MemberInactive)))
	assert.False(t, CanLeaveTeam(nil))
}

func TestCanModerateContent(t *testing.T) {
	author := Actor{ID: "author-1", Role: types.RoleMember, Status: types.UserActive}
	stranger := Actor{ID: "other-1", Role: types.RoleMember, Status: types.UserActive}

	assert.True(t, CanModerateContent(author, nil, "author-1"))
	assert.False(t, CanModerateContent(stranger, membership(types.MemberRoleMember, types.MemberActive), "author-1"))
	assert.True(t, CanModerateContent(stranger, membership(types.MemberRoleOwner, types.MemberActive), "author-1"))
	assert.True(t, CanModerateContent(stranger, membership(types.MemberRoleAdmin, types.MemberActive), "author-1"))
	assert.True(t, CanModerateContent(activeActor(types.RoleAdmin), nil, "author-1"))
}

func TestCanEditContent(t *testing.T) {
	author := Actor{ID: "author-1", Role: types.RoleMember, Status: types.UserActive}
	stranger := Actor{ID: "other-1", Role: types.RoleMember, Status: types.UserActive}

	assert.True(t, CanEditContent(author, "author-1"))
	assert.False(t, CanEditContent(stranger, "author-1"))
	assert.True(t, CanEditContent(activeActor(types.RoleAdmin), "author-1"))
}

func TestUserRules(t *testing.T) {
	self := Actor{ID: "u1", Role: types.RoleMember, Status: types.UserActive}

	assert.True(t, CanViewUser(self, "u1"))
	assert.False(t, CanViewUser(self, "u2"))
	assert.True(t, CanViewUser(activeActor(types.RoleAdmin), "u2"))

	assert.False(t, CanAdministerUsers(self))
	assert.False(t, CanAdministerUsers(activeActor(types.RoleManager)))
	assert.True(t, CanAdministerUsers(activeActor(types.RoleAdmin)))
}

func TestIsLastAdmin(t *testing.T) {
	assert.True(t, IsLastAdmin(0))
	assert.False(t, IsLastAdmin(1))
}

func TestCheckDispatch(t *testing.T) {
	member := activeActor(types.RoleMember)
	owner := membership(types.MemberRoleOwner, types.MemberActive)
	plain := membership(types.MemberRoleMember, types.MemberActive)

	assert.True(t, Check(member, ResourceTeam, ActionView, plain))
	assert.False(t, Check(member, ResourceTeam, ActionMutate, plain))
	assert.True(t, Check(member, ResourceTeam, ActionMutate, owner))
	assert.True(t, Check(member, ResourceProject, ActionView, plain))
	assert.False(t, Check(member, ResourceProject, ActionMutate, plain))
	assert.True(t, Check(member, ResourceTask, ActionMutate, plain))
	assert.False(t, Check(member, "unknown", ActionView, plain))
}
