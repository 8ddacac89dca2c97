package web

import (
	"fmt"
	"net/http"
	"reflect"
)

// Response is the envelope every dispatch produces. Content is serialized by
// the transport; a nil Content yields an empty body.
type Response struct {
	Status  int `json:"status"`
	Content any `json:"content,omitempty"`
}

func NewResponse(status int, content any) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{Status: status, Content: content}
}

// Ok wraps content in a 200 response.
func Ok(content any) *Response {
	return NewResponse(http.StatusOK, content)
}

func NotFound() *Response {
	return NewResponse(http.StatusNotFound, nil)
}

func Unauthorized(content any) *Response {
	return NewResponse(http.StatusUnauthorized, StatusContent(http.StatusUnauthorized, content))
}

func Forbidden(content any) *Response {
	return NewResponse(http.StatusForbidden, StatusContent(http.StatusForbidden, content))
}

// MethodNotAllowed reports that no controller method serves the verb.
func MethodNotAllowed(message string) *Response {
	return NewResponse(http.StatusMethodNotAllowed, StatusContent(http.StatusMethodNotAllowed, message))
}

// InternalServerError carries the failure message and the source location
// it was raised at.
func InternalServerError(message, file string, line int) *Response {
	return NewResponse(http.StatusInternalServerError, Error{
		Status:  http.StatusInternalServerError,
		Message: message,
		File:    file,
		Line:    line,
	})
}

// StatusContent shapes content for status responses. No content yields the
// status text, objects and lists are carried as data, anything else becomes
// the message.
func StatusContent(status int, content any) Error {
	if content == nil {
		return Error{Status: status, Message: StatusText(status)}
	}
	switch t := content.(type) {
	case string:
		return Error{Status: status, Message: t}
	case error:
		return Error{Status: status, Message: t.Error()}
	}

	v := reflect.ValueOf(content)
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return Error{Status: status, Data: content, Message: StatusText(status)}
	case reflect.Pointer:
		return Error{Status: status, Message: StatusText(status)}
	default:
		return Error{Status: status, Message: fmt.Sprint(content)}
	}
}
