package models

import "time"

// School школа (палестра) федерации.
type School struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	GymName   *string   `json:"gymName"`
	Slug      string    `json:"slug"`
	Address   *string   `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

// SchoolWithCounts школа с количеством членов и инструкторов для списка администратора.
type SchoolWithCounts struct {
	School
	SubscriberCount int `json:"subscriberCount"`
	InstructorCount int `json:"instructorCount"`
}

// PublicSchool публичная проекция школы для страницы самостоятельной регистрации.
type PublicSchool struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	GymName *string `json:"gymName"`
	Slug    string  `json:"slug"`
}

// SchoolSummary краткое описание школы инструктора.
type SchoolSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// SchoolInput данные формы создания и изменения школы.
type SchoolInput struct {
	Name    string `json:"name" validate:"required"`
	GymName string `json:"gymName"`
	Slug    string `json:"slug" validate:"required"`
	Address string `json:"address"`
}

// Public возвращает публичную проекцию школы.
func (s School) Public() PublicSchool {
	return PublicSchool{
		ID:      s.ID,
		Name:    s.Name,
		GymName: s.GymName,
		Slug:    s.Slug,
	}
}
