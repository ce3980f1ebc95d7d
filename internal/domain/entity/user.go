package entity

import "time"

// User is an authenticated member of staff
type User struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Department  Department `json:"department"`
	Role        Role       `json:"role"`
	Permissions []string   `json:"permissions"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsAdmin reports whether the user holds the Admin role or belongs to the Admin department
func (u *User) IsAdmin() bool {
	return u != nil && (u.Role == RoleAdmin || u.Department == DepartmentAdmin)
}
