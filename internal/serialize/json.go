package serialize

import (
	"encoding/json"
	"fmt"
)

// WriteJSON renders the record-oriented nested shape.
func WriteJSON(result ScanResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling scan result: %w", err)
	}
	return data, nil
}

// ReadJSON parses a previously-written record-oriented document.
func ReadJSON(data []byte) (ScanResult, error) {
	var result ScanResult
	if err := json.Unmarshal(data, &result); err != nil {
		return ScanResult{}, fmt.Errorf("parsing scan result: %w", err)
	}
	return result, nil
}
