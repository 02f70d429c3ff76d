package users

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	assert.True(t, IsValidRole("USER"))
	assert.True(t, IsValidRole("ADMIN"))
	assert.False(t, IsValidRole("admin"))
	assert.False(t, IsValidRole(""))
}

func TestUser_FullName(t *testing.T) {
	u := User{FirstName: "Lina", LastName: "Haddad"}
	assert.Equal(t, "Lina Haddad", u.FullName())
}
