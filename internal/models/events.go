package models

// RegistrationEvent сообщение о новой публичной регистрации, уходит в RabbitMQ.
type RegistrationEvent struct {
	SubscriberID int    `json:"subscriberId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	SchoolID     int    `json:"schoolId"`
	SchoolName   string `json:"schoolName"`
}
