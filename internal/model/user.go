package model

import "time"

type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleSales   UserRole = "sales"
	RoleUser    UserRole = "user"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusInactive  UserStatus = "inactive"
	UserStatusSuspended UserStatus = "suspended"
)

type User struct {
	Base
	Username     string     `gorm:"size:80;not null;uniqueIndex" json:"username"`
	Email        string     `gorm:"size:120;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	RealName     string     `gorm:"size:50" json:"real_name"`
	Phone        string     `gorm:"size:20" json:"phone"`
	Department   string     `gorm:"size:50" json:"department"`
	Position     string     `gorm:"size:50" json:"position"`
	Role         UserRole   `gorm:"size:20;not null;default:user" json:"role"`
	Status       UserStatus `gorm:"size:20;not null;default:active" json:"status"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// DisplayName prefers the real name over the login name.
func (u *User) DisplayName() string {
	if u.RealName != "" {
		return u.RealName
	}
	return u.Username
}

// roleRank orders the roles for coarse access control: admin > manager >
// sales > user.
var roleRank = map[UserRole]int{
	RoleAdmin:   4,
	RoleManager: 3,
	RoleSales:   2,
	RoleUser:    1,
}

// HasRole reports whether the user's role is at least the required one.
func (u *User) HasRole(required UserRole) bool {
	return roleRank[u.Role] >= roleRank[required]
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive && !u.IsDeleted
}
