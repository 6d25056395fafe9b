package types

import "encoding/json"

// PageMeta describes a page of a list response.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	NextPage   *int  `json:"nextPage"`
	PrevPage   *int  `json:"prevPage"`
}

type SuccessEnvelope struct {
	Success    bool      `json:"success"`
	Data       any       `json:"data"`
	Message    string    `json:"message,omitempty"`
	Pagination *PageMeta `json:"pagination,omitempty"`
}

type FieldError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

type APIError struct {
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"fields,omitempty"`
	Details any          `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Success bool     `json:"success"`
	Error   APIError `json:"error"`
}

// Result decodes either envelope shape. Exactly one of Data or Error is
// meaningful depending on Success.
type Result[T any] struct {
	Success    bool      `json:"success"`
	Data       T         `json:"data"`
	Message    string    `json:"message,omitempty"`
	Pagination *PageMeta `json:"pagination,omitempty"`
	Error      *APIError `json:"error,omitempty"`
}

// DecodeResult parses a response body into a Result.
func DecodeResult[T any](body []byte) (Result[T], error) {
	var res Result[T]
	if err := json.Unmarshal(body, &res); err != nil {
		return Result[T]{}, err
	}
	return res, nil
}

// OK returns the payload when the envelope reports success.
func (r Result[T]) OK() (T, bool) {
	if !r.Success {
		var zero T
		return zero, false
	}
	return r.Data, true
}

// Err returns the error payload when the envelope reports failure.
func (r Result[T]) Err() (*APIError, bool) {
	if r.Success || r.Error == nil {
		return nil, false
	}
	return r.Error, true
}
