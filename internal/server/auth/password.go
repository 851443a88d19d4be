package auth

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/captionly/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor used for stored password hashes.
const PasswordCost = 10

// dummyHash is compared against when the user does not exist, so a login
// for an unknown name costs the same as one with a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("captionly-dummy-password"), PasswordCost)

// ErrPasswordTooLong is returned for passwords bcrypt cannot hash (over 72
// bytes). It wraps common.ErrorBadRequest.
var ErrPasswordTooLong = fmt.Errorf("password longer than 72 bytes: %w", common.ErrorBadRequest)

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", ErrPasswordTooLong
		}
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// BurnPasswordCheck performs a comparison against a fixed hash and discards
// the result.
func BurnPasswordCheck(password string) {
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}
