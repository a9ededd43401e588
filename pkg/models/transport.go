package models

// NoQRCodeMessage is reported whenever an image holds no decodable code.
const NoQRCodeMessage = "No QR code detected in the image."

// QueryDecodeRequest is the GET variant: /process-qrcode/?image_url=<url>
type QueryDecodeRequest struct {
	ImageURL string `form:"image_url" binding:"required"`
}

// BodyDecodeRequest is the POST variant body.
type BodyDecodeRequest struct {
	ImageURL     string `json:"image_url" binding:"required"`
	ExpectedText string `json:"expected_text,omitempty"`
}

// QueryDecodeResponse answers the GET variant. Text fields are pointers so
// that a code holding the empty string still serialises.
type QueryDecodeResponse struct {
	Success     bool    `json:"success"`
	DecodedText *string `json:"decoded_text,omitempty"`
	Message     string  `json:"message,omitempty"`
}

// BodyDecodeResponse answers the POST variant.
type BodyDecodeResponse struct {
	QRText     *string  `json:"qr_text,omitempty"`
	Success    *bool    `json:"success,omitempty"`
	Message    string   `json:"message,omitempty"`
	MatchScore *float64 `json:"match_score,omitempty"`
	Matched    *bool    `json:"matched,omitempty"`
}

// ErrorResponse carries the client-facing description of a failure.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// MessageResponse is the liveness placeholder body.
type MessageResponse struct {
	Message string `json:"message"`
}
