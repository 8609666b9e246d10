package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckPassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "hunter2!aA", nil},
		{"too short", "a1!", ErrPasswordShouldBeNCharacters},
		{"letters only", "password!!", ErrPasswordNotAlphanumeric},
		{"digits only", "12345678!", ErrPasswordNotAlphanumeric},
		{"no special character", "password123", ErrPasswordDoesNotHaveSpecialCharacter},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckPassword(tc.password)
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
