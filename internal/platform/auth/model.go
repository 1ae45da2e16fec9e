package auth

import "time"

const (
	RoleAdmin   = "admin"
	RolePetugas = "petugas"
	RoleUser    = "user"

	StatusActive   = "active"
	StatusInactive = "inactive"
)

func ValidRole(r string) bool {
	return r == RoleAdmin || r == RolePetugas || r == RoleUser
}

// User はスタッフアカウント。ポータル利用者（借用者）はアカウントを持たない
type User struct {
	ID              uint64     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	EmployeeID      *string    `json:"employee_id,omitempty"`
	Department      *string    `json:"department,omitempty"`
	Phone           *string    `json:"phone,omitempty"`
	Status          string     `json:"status"`
	EmailVerifiedAt *time.Time `json:"email_verified_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

func (u *User) Verified() bool { return u.EmailVerifiedAt != nil }

// Summary は他のレスポンスに埋め込む処理者情報
type Summary struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
