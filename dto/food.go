package dto

// RedeemRequest carries the raw QR text decoded by the scanner station.
type RedeemRequest struct {
	Payload string `json:"payload" binding:"required"`
}

type ScannerFrameRequest struct {
	Text string `json:"text" binding:"required"`
}
