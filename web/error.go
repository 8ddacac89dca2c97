package web

import "github.com/gofiber/utils/v2"

// Error is the body of non-success responses.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// StatusText returns the reason phrase for status.
func StatusText(status int) string {
	return utils.StatusMessage(status)
}
