package view

import "encoding/json"

// Collection extracts the row array from whatever shape the backend returned:
// a bare array, {"results": [...]}, or {"items": [...]}. Anything else yields
// an empty slice, never nil and never an error.
func Collection(payload []byte) []json.RawMessage {
	if len(payload) == 0 {
		return []json.RawMessage{}
	}

	var direct []json.RawMessage
	if err := json.Unmarshal(payload, &direct); err == nil && direct != nil {
		return direct
	}

	var wrapped struct {
		Results []json.RawMessage `json:"results"`
		Items   []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(payload, &wrapped); err == nil {
		if wrapped.Results != nil {
			return wrapped.Results
		}
		if wrapped.Items != nil {
			return wrapped.Items
		}
	}
	return []json.RawMessage{}
}

// DecodeCollection normalizes the payload and decodes each row, skipping rows
// that do not fit the target shape.
func DecodeCollection[T any](payload []byte) []T {
	rows := Collection(payload)
	decoded := make([]T, 0, len(rows))
	for _, row := range rows {
		var value T
		if err := json.Unmarshal(row, &value); err != nil {
			continue
		}
		decoded = append(decoded, value)
	}
	return decoded
}
