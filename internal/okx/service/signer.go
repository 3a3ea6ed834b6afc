package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
	"time"
)

// TimestampLayout — ISO 8601 с миллисекундами, как ждёт OK-ACCESS-TIMESTAMP
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Sign считает подпись OKX: base64(HMAC_SHA256(secret, timestamp + METHOD + path + body)).
// path включает query-строку ровно в том виде, в каком она уходит в запрос.
func Sign(secret, timestamp, method, requestPath, body string) string {
	message := timestamp + strings.ToUpper(method) + requestPath + body
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
