package model

import "time"

type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleStaff  MemberRole = "staff"
)

// ActorRole identifies who is calling the attendance engine. Staff bypass
// the self-service edit window; participants do not.
type ActorRole string

const (
	ActorParticipant ActorRole = "participant"
	ActorStaff       ActorRole = "staff"
)

type Member struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Phone     string     `json:"phone"`
	Role      MemberRole `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}
