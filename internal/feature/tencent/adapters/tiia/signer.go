// Package tiia はテンセントクラウド画像分析（TIIA）APIのクライアントを提供します。
package tiia

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

const (
	signAlgorithm = "TC3-HMAC-SHA256"
	signedHeaders = "content-type;host;x-tc-action"
	contentType   = "application/json; charset=utf-8"
)

// hmacSHA256 はHMAC-SHA256のダイジェストを返します。
func hmacSHA256(key []byte, msg string) []byte {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(msg))
	return h.Sum(nil)
}

// sha256Hex はSHA-256ハッシュの16進表現を返します。
func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// sign はTC3-HMAC-SHA256署名方式のAuthorizationヘッダー値を生成します。
//
// 署名手順はテンセントクラウドAPI 3.0の仕様に従います:
// 正規リクエスト → 署名対象文字列 → 派生署名鍵 → 署名。
func sign(secretID, secretKey, host, service, action string, payload []byte, t time.Time) string {
	// 1. 正規リクエスト
	canonicalHeaders := fmt.Sprintf("content-type:%s\nhost:%s\nx-tc-action:%s\n",
		contentType, host, strings.ToLower(action))
	canonicalRequest := strings.Join([]string{
		"POST",
		"/",
		"", // クエリ文字列なし
		canonicalHeaders,
		signedHeaders,
		sha256Hex(payload),
	}, "\n")

	// 2. 署名対象文字列
	date := t.UTC().Format("2006-01-02")
	credentialScope := fmt.Sprintf("%s/%s/tc3_request", date, service)
	stringToSign := strings.Join([]string{
		signAlgorithm,
		fmt.Sprintf("%d", t.Unix()),
		credentialScope,
		sha256Hex([]byte(canonicalRequest)),
	}, "\n")

	// 3. 派生署名鍵と署名
	secretDate := hmacSHA256([]byte("TC3"+secretKey), date)
	secretService := hmacSHA256(secretDate, service)
	secretSigning := hmacSHA256(secretService, "tc3_request")
	signature := hex.EncodeToString(hmacSHA256(secretSigning, stringToSign))

	return fmt.Sprintf("%s Credential=%s/%s, SignedHeaders=%s, Signature=%s",
		signAlgorithm, secretID, credentialScope, signedHeaders, signature)
}
