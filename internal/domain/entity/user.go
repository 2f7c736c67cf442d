package entity

import "time"

const RoleAdmin = "admin"

// User is the authenticated account backing a principal. Role is the
// single admin authority; there is no separate admin email list.
type User struct {
	ID    string `json:"id" firestore:"id"`
	Email string `json:"email" firestore:"email"`
	Name  string `json:"name,omitempty" firestore:"name,omitempty"`
	Phone string `json:"phone,omitempty" firestore:"phone,omitempty"`
	Role  string `json:"role" firestore:"role"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// IsAdmin reports whether the account carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
