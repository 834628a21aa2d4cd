package service

import (
	"encoding/base64"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const qrSize = 256

func newSessionCode() string {
	return uuid.NewString()
}

// qrDataURL encodes content as a PNG QR code in a data URL.
func qrDataURL(content string) (string, error) {
	png, err := qrcode.Encode(content, qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
