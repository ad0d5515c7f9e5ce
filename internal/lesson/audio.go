package lesson

// AudioPayload is the wire form of synthesized speech: base64-encoded audio
// bytes plus their MIME type.
type AudioPayload struct {
	AudioBase64 string `json:"audio_base64"`
	ContentType string `json:"content_type"`
}

// Request is the lesson-creation request body.
type Request struct {
	Topic    string `json:"topic"`
	Dialect  string `json:"dialect"`
	BookText string `json:"book_text,omitempty"`
}

// AudioRequest is the synthesis request body.
type AudioRequest struct {
	Text    string `json:"text"`
	Dialect string `json:"dialect"`
}
