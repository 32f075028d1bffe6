package badger

import (
	"encoding/binary"
	"time"
)

// Key prefixes for different data types
const (
	documentPrefix    = "meddoc"
	chatMessagePrefix = "chamsg"
)

// makeDocumentKey generates a key for a document by its deterministic ID.
func makeDocumentKey(id string) []byte {
	return []byte(documentPrefix + ":" + id)
}

// documentKeyID extracts the document ID back out of a storage key.
func documentKeyID(key []byte) string {
	return string(key[len(documentPrefix)+1:])
}

// makeChatMessageKey generates a composite key for a chat message.
// Format: prefix:session:timestamp:id
// The timestamp is written in BigEndian order so a lexicographic scan of a
// session's keys returns messages in chronological order.
func makeChatMessageKey(session string, timestamp time.Time, id uint64) []byte {
	prefix := chatMessagePrefix + ":" + session + ":"
	prefixBytes := []byte(prefix)
	totalSize := len(prefixBytes) + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], id)
	return buf
}

// makeSessionPrefix generates the key prefix covering one session's messages.
func makeSessionPrefix(session string) []byte {
	return []byte(chatMessagePrefix + ":" + session + ":")
}
