package model

// Principal is the authenticated identity resolved from the access token
// before any core operation executes.
type Principal struct {
	UserID   uint
	Username string
	Role     UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// CanWrite gates mutating operations: plain users are read-only.
func (p Principal) CanWrite() bool {
	return roleRank[p.Role] >= roleRank[RoleSales]
}

// CanManage gates destructive operations such as deletes.
func (p Principal) CanManage() bool {
	return roleRank[p.Role] >= roleRank[RoleManager]
}
