package models

import "io"

// UploadRequest запрос подписанной ссылки на загрузку справки.
type UploadRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required"`
}

// UploadURL подписанная ссылка PUT и ключ, под которым будет лежать файл.
type UploadURL struct {
	SignedURL string `json:"signedUrl"`
	Key       string `json:"key"`
	Bucket    string `json:"bucket"`
}

// Certificate содержимое справки для отдачи клиенту.
type Certificate struct {
	Body        io.ReadCloser
	ContentType string
	FileName    string
}
