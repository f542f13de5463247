package models

import "time"

// Типы документа, удостоверяющего личность.
const (
	DocumentIdentityCard = "CI"
	DocumentPassport     = "PP"
	DocumentDriveLicense = "PT"
)

// MedicalCertPrefix префикс ключей медицинских справок в объектном хранилище.
const MedicalCertPrefix = "medical-certificates/"

// Subscriber член федерации, записанный в одну школу.
type Subscriber struct {
	ID               int        `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	BirthDate        time.Time  `json:"birthDate"`
	BirthPlace       string     `json:"birthPlace"`
	BirthCap         string     `json:"birthCap"`
	FiscalCode       string     `json:"fiscalCode"`
	Residence        string     `json:"residence"`
	ResidenceCity    string     `json:"residenceCity"`
	ResidenceCap     string     `json:"residenceCap"`
	Email            string     `json:"email"`
	Phone            string     `json:"phone"`
	Duan             int        `json:"duan"`
	DocumentType     *string    `json:"documentType"`
	DocumentNumber   *string    `json:"documentNumber"`
	DocumentExpiry   *time.Time `json:"documentExpiry"`
	HasMedicalCert   bool       `json:"hasMedicalCert"`
	MedicalCertS3Key *string    `json:"medicalCertS3Key"`
	QRCode           string     `json:"qrCode"`
	SLWCJoinDate     time.Time  `json:"slwcJoinDate"`
	AnnualPayment    bool       `json:"annualPayment"`
	IsEPSMember      bool       `json:"isEpsMember"`
	EPSCardNumber    *string    `json:"epsCardNumber"`
	EPSJoinDate      *time.Time `json:"epsJoinDate"`
	SchoolID         int        `json:"schoolId"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// SubscriberView член федерации в списках: с названием школы и признаком инструктора.
type SubscriberView struct {
	Subscriber
	SchoolName       string `json:"schoolName"`
	IsAlsoInstructor bool   `json:"isAlsoInstructor"`
}

// SubscriberWithSchool строка выгрузки: член федерации и реквизиты его школы.
type SubscriberWithSchool struct {
	Subscriber
	SchoolName    string
	SchoolGymName *string
	SchoolAddress *string
}

// SubscriberInput данные формы члена федерации. Даты приходят строками YYYY-MM-DD.
type SubscriberInput struct {
	FirstName        string `json:"firstName" validate:"required"`
	LastName         string `json:"lastName" validate:"required"`
	BirthDate        string `json:"birthDate" validate:"required"`
	BirthPlace       string `json:"birthPlace" validate:"required"`
	BirthCap         string `json:"birthCap" validate:"required"`
	FiscalCode       string `json:"fiscalCode" validate:"required,len=16"`
	Residence        string `json:"residence" validate:"required"`
	ResidenceCity    string `json:"residenceCity" validate:"required"`
	ResidenceCap     string `json:"residenceCap" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	Phone            string `json:"phone" validate:"required"`
	Duan             int    `json:"duan" validate:"min=0,max=18"`
	DocumentType     string `json:"documentType" validate:"omitempty,oneof=CI PP PT"`
	DocumentNumber   string `json:"documentNumber"`
	DocumentExpiry   string `json:"documentExpiry"`
	MedicalCertS3Key string `json:"medicalCertS3Key"`
	SLWCJoinDate     string `json:"slwcJoinDate"`
	AnnualPayment    bool   `json:"annualPayment"`
	IsEPSMember      bool   `json:"isEpsMember"`
	EPSCardNumber    string `json:"epsCardNumber"`
	EPSJoinDate      string `json:"epsJoinDate"`
	SchoolID         int    `json:"schoolId" validate:"min=0"`
}

// PublicRegistrationInput форма самостоятельной регистрации по QR-ссылке.
// Школа задаётся slug'ом или идентификатором.
type PublicRegistrationInput struct {
	SubscriberInput
	Slug string `json:"slug"`
}

// RegistrationResult ответ публичной регистрации.
type RegistrationResult struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	School string `json:"school"`
}
