package qrtoken

import (
	qrcode "github.com/skip2/go-qrcode"
)

// Image renders the payload as a QR PNG for the participant dashboard.
func Image(p Payload, size int) ([]byte, error) {
	raw, err := Encode(p)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = 300
	}
	return qrcode.Encode(raw, qrcode.Medium, size)
}
