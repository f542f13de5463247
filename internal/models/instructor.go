package models

import "time"

// Роли учётных записей.
const (
	RoleAdmin      = "ADMIN"
	RoleInstructor = "INSTRUCTOR"
)

// Instructor учётная запись персонала школы.
type Instructor struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	SchoolID     int       `json:"schoolId"`
	SubscriberID *int      `json:"subscriberId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// InstructorView инструктор вместе с названием школы.
type InstructorView struct {
	Instructor
	SchoolName string `json:"schoolName"`
}

// InstructorInput данные формы создания инструктора.
type InstructorInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=ADMIN INSTRUCTOR"`
	SchoolID int    `json:"schoolId" validate:"required,gt=0"`
}

// PromoteInput запрос на перевод члена федерации в инструкторы.
type PromoteInput struct {
	SubscriberID int    `json:"subscriberId" validate:"required,gt=0"`
	Password     string `json:"password" validate:"required,min=8,max=72"`
	SchoolID     int    `json:"schoolId" validate:"required,gt=0"`
}
