package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfoString(t *testing.T) {
	assert.Equal(t, "dev", Info{}.String())
	assert.Equal(t, "v1.2.0", Info{Tag: "v1.2.0"}.String())

	info := fromSettings(Info{Tag: "v1.2.0"}, []debug.BuildSetting{
		{Key: "vcs.revision", Value: "0123456789abcdef"},
		{Key: "vcs.time", Value: "2024-05-01T10:20:30Z"},
		{Key: "vcs.modified", Value: "true"},
	})
	assert.Equal(t, "v1.2.0 0123456 at 2024-05-01 10:20:30 dirty", info.String())

	info = fromSettings(Info{}, []debug.BuildSetting{{Key: "vcs.revision", Value: "abc"}})
	assert.Equal(t, "abc", info.String())
}

func TestStringIsStable(t *testing.T) {
	assert.Equal(t, String(), String())
}
