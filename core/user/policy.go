package user

// Action identifies a write operation gated by role.
type Action string

const (
	ActionCreateThread Action = "thread:create"
	ActionWriteContent Action = "content:write" // blogs, events, resources
	ActionManageUsers  Action = "users:manage"
	ActionViewLedger   Action = "ledger:view"
)

// CanWrite reports whether usr may perform the given action.
// It is a pure function over the role enum; anonymous principals are
// represented by the zero User and are denied everything.
func CanWrite(usr User, action Action) bool {
	if usr.ID == 0 || !usr.IsActive {
		return false
	}
	switch action {
	case ActionCreateThread:
		return true // any authenticated user
	case ActionWriteContent:
		return usr.Role == RoleTeacher || usr.Role == RoleAdmin
	case ActionManageUsers, ActionViewLedger:
		return usr.Role == RoleAdmin
	}
	return false
}
