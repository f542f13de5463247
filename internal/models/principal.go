package models

// Principal аутентифицированный пользователь запроса, восстановленный из JWT.
type Principal struct {
	InstructorID int    `json:"id"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	SchoolID     int    `json:"schoolId"`
	SchoolName   string `json:"schoolName"`
}

// IsAdmin сообщает, есть ли у пользователя права администратора.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
