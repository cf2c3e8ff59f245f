package draft

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// hashTag returns the part of key Redis Cluster hashes to pick a slot.
func hashTag(key string) string {
	start := strings.IndexByte(key, '{')
	if start < 0 {
		return key
	}
	end := strings.IndexByte(key[start+1:], '}')
	if end <= 0 {
		return key
	}
	return key[start+1 : start+1+end]
}

func TestRedisKeysShareOneSlot(t *testing.T) {
	index := hashTag(savedAtIndexKey)
	assert.Equal(t, "draft", index)
	for _, sessionID := range []string{"sess-1", "a{b}c", "{other}"} {
		assert.Equal(t, index, hashTag(sessionKey(sessionID)), sessionID)
	}
}
