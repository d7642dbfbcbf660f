package secret

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestString(t *testing.T) {
	s := NewString("123:abc")
	assert.Equal(t, "123:abc", s.Unmask())
	assert.Equal(t, "******", fmt.Sprint(s))
	assert.False(t, s.IsEmpty())

	b, err := json.Marshal(struct{ Token String }{s})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Token":"******"}`, string(b))

	assert.Equal(t, "", NewString("").String())
}
