package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_WrapsKind(t *testing.T) {
	err := fmt.Errorf("subscriber.Create: %w", NewError(ErrConflict, "email o codice fiscale già registrati"))

	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "email o codice fiscale già registrati", Message(err))
}

func TestMessage_PlainError(t *testing.T) {
	assert.Empty(t, Message(errors.New("boom")))
	assert.Empty(t, Message(fmt.Errorf("op: %w", ErrNotFound)))
}

func TestSchool_Public(t *testing.T) {
	gym := "Palestra Centro"
	s := School{ID: 3, Name: "Roma Centro", GymName: &gym, Slug: "roma-centro"}

	p := s.Public()
	assert.Equal(t, PublicSchool{ID: 3, Name: "Roma Centro", GymName: &gym, Slug: "roma-centro"}, p)
}

func TestPrincipal_IsAdmin(t *testing.T) {
	assert.True(t, Principal{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Principal{Role: RoleInstructor}.IsAdmin())
}
