package docinfo

import (
	"encoding/json"
	"fmt"
)

// MarshalJSON encodes a list Value as a JSON array and a scalar as a string.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.List {
		items := v.Items
		if items == nil {
			items = []string{}
		}
		return json.Marshal(items)
	}
	return json.Marshal(v.Text)
}

// UnmarshalJSON accepts a JSON string or array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = Scalar(text)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("docinfo: value must be a string or list of strings: %w", err)
	}
	*v = ListOf(items...)
	return nil
}
