// Package imaging は画像のBase64デコード/エンコードと注釈描画を提供します。
package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// minBase64Length を下回るペイロードは画像として成立しないため即座に拒否します。
const minBase64Length = 100

// jpegQuality は再エンコード時のJPEG品質です。
const jpegQuality = 90

var (
	// ErrPayloadTooShort はBase64ペイロードが短すぎる場合のエラーです。
	ErrPayloadTooShort = errors.New("base64 payload is too short")
	// ErrInvalidBase64 はBase64デコードに失敗した場合のエラーです。
	ErrInvalidBase64 = errors.New("invalid base64 payload")
	// ErrUndecodableImage は画像としてデコードできない場合のエラーです。
	ErrUndecodableImage = errors.New("cannot decode image data")
)

// StripBase64Prefix はdata-URIプレフィックス（"data:image/png;base64," など）と
// 前後の空白を除去したBase64文字列を返します。ベンダーへそのまま転送する場合に使います。
func StripBase64Prefix(payload string) (string, error) {
	if idx := strings.IndexByte(payload, ','); idx >= 0 {
		payload = payload[idx+1:]
	}
	payload = strings.TrimSpace(payload)

	if len(payload) < minBase64Length {
		return "", fmt.Errorf("%w: length %d", ErrPayloadTooShort, len(payload))
	}
	return payload, nil
}

// DecodeBase64 はBase64文字列を画像バイト列にデコードします。
func DecodeBase64(payload string) ([]byte, error) {
	payload, err := StripBase64Prefix(payload)
	if err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// パディング欠落のペイロードも受け付ける
		data, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBase64, err)
		}
	}
	return data, nil
}

// DecodeImage はBase64文字列を画像にデコードします。
// 対応フォーマット: JPEG / PNG / GIF / WebP。
func DecodeImage(payload string) (image.Image, error) {
	data, err := DecodeBase64(payload)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	return img, nil
}

// EncodeJPEGBase64 は画像をJPEGにエンコードし、Base64文字列として返します。
func EncodeJPEGBase64(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
