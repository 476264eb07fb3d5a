package imaging_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"vision_backend/internal/platform/imaging"
)

// pngBase64 はテスト用のPNG画像をBase64文字列として生成するヘルパーです。
func pngBase64(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 7), uint8(y * 11), 128, 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestDecodeImage(t *testing.T) {
	payload := pngBase64(t, 16, 16)

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{name: "success: plain base64", payload: payload},
		{name: "success: data URI prefix", payload: "data:image/png;base64," + payload},
		{name: "success: surrounding whitespace", payload: "  \n" + payload + "\n  "},
		{name: "error: empty payload", payload: "", wantErr: imaging.ErrPayloadTooShort},
		{name: "error: too short", payload: "aGVsbG8=", wantErr: imaging.ErrPayloadTooShort},
		{name: "error: invalid base64", payload: strings.Repeat("!", 200), wantErr: imaging.ErrInvalidBase64},
		{name: "error: not an image", payload: base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), 200)), wantErr: imaging.ErrUndecodableImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := imaging.DecodeImage(tt.payload)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if img.Bounds().Dx() != 16 || img.Bounds().Dy() != 16 {
				t.Errorf("decoded size mismatch: %v", img.Bounds())
			}
		})
	}
}

func TestEncodeJPEGBase64_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	encoded, err := imaging.EncodeJPEGBase64(img)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("output is not valid base64: %v", err)
	}
	decoded, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("output is not a decodable image: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format mismatch: got %q, want jpeg", format)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("bounds mismatch: got %v, want %v", decoded.Bounds(), img.Bounds())
	}
}

func TestAnnotate_DoesNotMutateSource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 64, 64))
	annotated := imaging.Annotate(src, []imaging.Box{
		{Rect: image.Rect(8, 8, 40, 40), Label: "dog", Confidence: 0.9},
	})

	if annotated == src {
		t.Fatal("annotate must return a copy")
	}
	// 元画像は全ピクセルゼロのまま
	for _, px := range src.Pix {
		if px != 0 {
			t.Fatal("source image was mutated")
		}
	}
	// コピー側には枠線が描かれている
	r, g, b, _ := annotated.At(8, 20).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("expected green outline pixel, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}
