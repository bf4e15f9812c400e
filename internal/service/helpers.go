package service

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// normalizeEmail приводит email к стандартному виду: trim пробелов + lowercase
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func generateRandomHex(byteLen int) (string, error) {
	if byteLen <= 0 {
		byteLen = 16
	}
	buf := make([]byte, byteLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// trialDeadline возвращает конец пробного периода:
// 7 дней от старта, округленные вверх до ближайшей полуночи
func trialDeadline(now time.Time) *time.Time {
	end := now.AddDate(0, 0, 7)
	deadline := time.Date(end.Year(), end.Month(), end.Day()+1, 0, 0, 0, 0, end.Location())
	return &deadline
}
