package auth

import "strings"

// Roles carried in the token.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

const (
	adminPassword = "8888"
	staffPassword = "1234"
)

// User is a login account tied to a roster entry.
type User struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	StaffID  string `json:"staffId"`
	password string
}

// Directory is the fixed set of salon accounts.
type Directory []User

// DefaultUsers returns the built-in accounts. The administrator signs in with
// 8888; everyone else uses 1234.
func DefaultUsers() Directory {
	return Directory{
		{Username: "amber", Name: "Amber", Role: RoleAdmin, StaffID: "s4", password: adminPassword},
		{Username: "lulu", Name: "露露 (Lulu)", Role: RoleStaff, StaffID: "s1", password: staffPassword},
		{Username: "qianqian", Name: "芊芊 (Qianqian)", Role: RoleStaff, StaffID: "s2", password: staffPassword},
		{Username: "guoguo", Name: "果果 (Guoguo)", Role: RoleStaff, StaffID: "s3", password: staffPassword},
	}
}

// Find looks a user up by username, ignoring case and surrounding space.
func (d Directory) Find(username string) (User, bool) {
	username = strings.ToLower(strings.TrimSpace(username))
	for _, u := range d {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}
