package models

import "time"

// UserRole określa rolę użytkownika w systemie
type UserRole string

const (
	RoleStudent UserRole = "student" // Student - może wypożyczać książki
	RoleAdmin   UserRole = "admin"   // Administrator - pełny dostęp do panelu admina
)

// IsValid sprawdza czy rola jest jedną z obsługiwanych wartości
func (r UserRole) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// UserProfile reprezentuje profil użytkownika powiązany z kontem Firebase Auth.
// ID dokumentu jest równe UID z Firebase Auth.
type UserProfile struct {
	ID         string    `json:"id" firestore:"id"`
	Email      string    `json:"email" firestore:"email"`
	Name       string    `json:"name" firestore:"name"`
	Role       UserRole  `json:"role" firestore:"role"`
	StudentID  string    `json:"student_id,omitempty" firestore:"student_id"`
	Department string    `json:"department,omitempty" firestore:"department"`
	Phone      string    `json:"phone,omitempty" firestore:"phone"`
	CreatedAt  time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updated_at"`
}

// IsAdmin sprawdza czy użytkownik jest administratorem
func (u *UserProfile) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStudent sprawdza czy użytkownik jest studentem
func (u *UserProfile) IsStudent() bool {
	return u.Role == RoleStudent
}
