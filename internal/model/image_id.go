package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ImageID is opaque to the client. The service currently sends integers, but
// string identifiers are accepted too.
type ImageID string

func (id *ImageID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ImageID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("image id must be a string or number: %s", string(data))
	}
	*id = ImageID(n.String())
	return nil
}

func (id ImageID) String() string {
	return string(id)
}
