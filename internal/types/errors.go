package types

import "fmt"

// Error represents an API error
type Error struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"statusCode"`
	Details    map[string]interface{} `json:"details,omitempty"`
	RequestID  string                 `json:"requestId,omitempty"`
	Err        error                  `json:"-"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("error: %s", e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// FieldError is one entry of a 422 validation response
type FieldError struct {
	Loc  []interface{} `json:"loc"`
	Msg  string        `json:"msg"`
	Type string        `json:"type"`
}

// Field returns the last element of the location path
func (f *FieldError) Field() string {
	if len(f.Loc) == 0 {
		return ""
	}
	return fmt.Sprint(f.Loc[len(f.Loc)-1])
}
