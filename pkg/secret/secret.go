package secret

import "encoding/json"

const mask = "******"

// String hides its value from fmt and json output.
type String struct {
	value string
}

func NewString(s string) String {
	return String{value: s}
}

func (s String) Unmask() string {
	return s.value
}

func (s String) IsEmpty() bool {
	return s.value == ""
}

func (s String) String() string {
	if s.value == "" {
		return ""
	}
	return mask
}

func (s String) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
