package services

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"
)

const (
	CodeTypeRegister      = "REGISTER"
	CodeTypeLogin         = "LOGIN"
	CodeTypeResetPassword = "RESET_PASSWORD"

	codeTTL            = 5 * time.Minute
	codeResendInterval = time.Minute
)

func ValidCodeType(t string) bool {
	return t == CodeTypeRegister || t == CodeTypeLogin || t == CodeTypeResetPassword
}

type codeEntry struct {
	code      string
	issuedAt  time.Time
	expiresAt time.Time
}

// CodeStore holds pending SMS verification codes in memory, keyed by
// phone and purpose. The real SMS gateway is stubbed: codes are only
// logged, matching the original's development behavior.
type CodeStore struct {
	mu      sync.Mutex
	entries map[string]codeEntry
}

func NewCodeStore() *CodeStore {
	return &CodeStore{entries: make(map[string]codeEntry)}
}

func (s *CodeStore) key(phone, codeType string) string {
	return phone + "_" + codeType
}

// Issue generates a 6-digit code, enforcing a one-minute resend gap.
func (s *CodeStore) Issue(phone, codeType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(phone, codeType)
	if prev, ok := s.entries[key]; ok && time.Since(prev.issuedAt) < codeResendInterval {
		return "", fmt.Errorf("%w: 验证码发送过于频繁，请稍后再试", ErrValidation)
	}

	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64()+100000)

	now := time.Now()
	s.entries[key] = codeEntry{code: code, issuedAt: now, expiresAt: now.Add(codeTTL)}

	slog.Info("verification code issued", "phone", maskPhone(phone), "type", codeType, "code", code)
	return code, nil
}

// Verify consumes the code on success.
func (s *CodeStore) Verify(phone, codeType, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(phone, codeType)
	entry, ok := s.entries[key]
	if !ok || entry.code != code || time.Now().After(entry.expiresAt) {
		return false
	}

	delete(s.entries, key)
	return true
}

// maskPhone keeps only the first 3 and last 4 digits: 138****1234.
func maskPhone(phone string) string {
	if len(phone) != 11 {
		return phone
	}
	return phone[:3] + "****" + phone[7:]
}
