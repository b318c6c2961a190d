package util

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeStrict copies a plain configuration map onto the struct pointed to by
// out, using its json tags. Unknown keys are rejected.
func DecodeStrict(m map[string]any, out any) error {
	blob, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode config map: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(blob))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode config map: %w", err)
	}
	return nil
}
