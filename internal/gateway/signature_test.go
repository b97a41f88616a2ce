package gateway

import (
	"crypto/sha512"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignature_MatchesSHA512Concatenation(t *testing.T) {
	t.Parallel()

	h := sha512.Sum512([]byte("ORDER-1" + "200" + "100000.00" + "secret-key"))
	expected := hex.EncodeToString(h[:])

	assert.Equal(t, expected, Signature("ORDER-1", "200", "100000.00", "secret-key"))
}

func TestVerifySignature_AcceptsValid(t *testing.T) {
	t.Parallel()

	sig := Signature("ORDER-1", "200", "100000.00", "secret-key")
	assert.True(t, VerifySignature("ORDER-1", "200", "100000.00", "secret-key", sig))
}

func TestVerifySignature_RejectsTampered(t *testing.T) {
	t.Parallel()

	sig := Signature("ORDER-1", "200", "100000.00", "secret-key")

	// Подмена любого подписанного поля инвалидирует подпись
	assert.False(t, VerifySignature("ORDER-2", "200", "100000.00", "secret-key", sig))
	assert.False(t, VerifySignature("ORDER-1", "201", "100000.00", "secret-key", sig))
	assert.False(t, VerifySignature("ORDER-1", "200", "999999.00", "secret-key", sig))
	assert.False(t, VerifySignature("ORDER-1", "200", "100000.00", "other-key", sig))
}

func TestVerifySignature_RejectsEmptyFields(t *testing.T) {
	t.Parallel()

	sig := Signature("ORDER-1", "200", "100000.00", "secret-key")

	assert.False(t, VerifySignature("", "200", "100000.00", "secret-key", sig))
	assert.False(t, VerifySignature("ORDER-1", "", "100000.00", "secret-key", sig))
	assert.False(t, VerifySignature("ORDER-1", "200", "", "secret-key", sig))
	assert.False(t, VerifySignature("ORDER-1", "200", "100000.00", "", sig))
	assert.False(t, VerifySignature("ORDER-1", "200", "100000.00", "secret-key", ""))

	// Уведомление без gross_amount - отказ, а не хеш пустой строки:
	// даже "честная" подпись по пустой сумме не проходит
	sigNoAmount := Signature("ORDER-1", "200", "", "secret-key")
	assert.False(t, VerifySignature("ORDER-1", "200", "", "secret-key", sigNoAmount))
}
