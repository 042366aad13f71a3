package realtime

import (
	"encoding/json"

	"github.com/vidstream-live-public/internal/validation"
)

// validate checks the struct tags on decoded command payloads. validator.Validate
// is safe for concurrent use, so one instance serves every hub.
var validate = validation.New()

// frame is the inbound wire envelope: one RPC-style method call.
type frame struct {
	Method  string          `json:"method"`
	Payload json.RawMessage `json:"payload"`
}

// decode unmarshals a method payload into dst and runs tag validation.
// Malformed JSON and failed tags both surface as field-level errors rather
// than the generic failure message.
func decode(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return validation.NewFieldError("payload", "malformed JSON payload")
	}
	return validate.Struct(dst)
}
