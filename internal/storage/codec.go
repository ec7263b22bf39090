package storage

import "github.com/bytedance/sonic"

// EncodeJSON marshals a collection for storage.
func EncodeJSON(v interface{}) (string, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeJSON unmarshals a stored collection into out. A missing or
// unparsable value leaves out untouched and reports false; storage
// corruption degrades a single key to its empty default, never the
// whole snapshot.
func DecodeJSON(raw string, ok bool, out interface{}) bool {
	if !ok || raw == "" {
		return false
	}
	if err := sonic.Unmarshal([]byte(raw), out); err != nil {
		return false
	}
	return true
}
