package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint 根据内容生成确定性的缓存键，namespace 用于区分不同用途
func Fingerprint(namespace string, parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	sum := h.Sum(nil)
	return namespace + ":" + hex.EncodeToString(sum[:16])
}
