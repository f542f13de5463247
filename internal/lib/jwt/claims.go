// Package jwt реализует генерацию и парсинг JWT токенов с пользовательскими claim полями.
//
// Maker определяет интерфейс для создания и проверки токенов персонала.
// MakerImpl конкретная реализация с использованием секретного ключа и срока жизни.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/slwc/membership/internal/models"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для аутентифицированного пользователя.
	GenerateToken(p models.Principal) (string, error)
	// ParseToken проверяет подпись и срок действия токена.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	InstructorID         int    `json:"instructor_id"`
	Email                string `json:"email"`
	Role                 string `json:"role"`
	SchoolID             int    `json:"school_id"`
	SchoolName           string `json:"school_name"`
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt и пр.
}

// Principal восстанавливает пользователя запроса из claims.
func (c *CustomClaims) Principal() models.Principal {
	return models.Principal{
		InstructorID: c.InstructorID,
		Email:        c.Email,
		Role:         c.Role,
		SchoolID:     c.SchoolID,
		SchoolName:   c.SchoolName,
	}
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
