package encrypt

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

var (
	ErrWeakPassword     = errors.New("password does not meet strength requirements")
	ErrPasswordMismatch = errors.New("password does not match")
)

// 密碼規則表，啟動時就編好 regexp
var passwordRules = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`[A-Z]`), "password must contain at least one uppercase letter"},
	{regexp.MustCompile(`[0-9]`), "password must contain at least one digit"},
	{regexp.MustCompile(`[!@#\$%\^&\*]`), "password must contain at least one special character (!@#$%^&*)"},
}

// ValidatePasswordStrength 檢查長度與字元組成，不合格回傳可直接顯示的訊息
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters long")
	}
	for _, rule := range passwordRules {
		if !rule.pattern.MatchString(password) {
			return errors.New(rule.message)
		}
	}
	return nil
}

// HashPassword 先過強度檢查再做 bcrypt
func HashPassword(password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword 比對明文與 bcrypt hash
func CheckPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
