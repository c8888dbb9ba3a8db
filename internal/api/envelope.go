package api

import (
	"encoding/json"
	"fmt"
)

// Envelope is the canonical shape every backend reply is normalized to.
// Some endpoints answer {statusCode,success,data,message}, others only
// {success,data,message}; normalization happens at the transport boundary
// so no service code ever sees the raw variants.
type Envelope struct {
	StatusCode int             `json:"statusCode"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

// Decode unmarshals the envelope's data payload into v.
func (e Envelope) Decode(v interface{}) error {
	if len(e.Data) == 0 {
		return fmt.Errorf("response envelope has no data")
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("failed to parse response data: %w", err)
	}
	return nil
}

// wireEnvelope tolerates both reply shapes. Success is a pointer so an
// absent field can be told apart from an explicit false.
type wireEnvelope struct {
	StatusCode int             `json:"statusCode"`
	Success    *bool           `json:"success"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
}

// normalizeEnvelope folds a raw reply body and its HTTP status into the
// canonical Envelope. A body that is not an envelope at all yields a
// best-effort envelope derived from the HTTP status.
func normalizeEnvelope(httpStatus int, body []byte) Envelope {
	env := Envelope{StatusCode: httpStatus}

	var wire wireEnvelope
	if len(body) > 0 {
		if err := json.Unmarshal(body, &wire); err != nil {
			env.Success = httpStatus >= 200 && httpStatus < 300
			return env
		}
	}

	if wire.StatusCode != 0 {
		env.StatusCode = wire.StatusCode
	}
	if wire.Success != nil {
		env.Success = *wire.Success
	} else {
		env.Success = env.StatusCode >= 200 && env.StatusCode < 300
	}
	env.Data = wire.Data
	env.Message = wire.Message
	return env
}

// APIError is a backend-reported failure with a user-facing message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}
