package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
)

// Signature формирует ожидаемую подпись уведомления:
// SHA-512 от конкатенации orderID || statusCode || grossAmount || serverKey,
// в hex. Так Midtrans подписывает каждый вебхук.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	h := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(h[:])
}

// VerifySignature сравнивает полученную подпись с ожидаемой.
// Сравнение за константное время: подпись - единственная защита
// от поддельных подтверждений оплаты.
//
// Пустой serverKey означает lenient-режим (sandbox без ключа) -
// решение пропускать проверку принимает вызывающая сторона,
// здесь пустой ключ с непустой подписью всегда даст false.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, received string) bool {
	if orderID == "" || statusCode == "" || grossAmount == "" || serverKey == "" || received == "" {
		return false
	}
	expected := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}
