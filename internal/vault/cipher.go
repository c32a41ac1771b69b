package vault

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"os"
)

// #region key

// loadOrCreateKey reads a 32-byte key from keyPath, generating one with
// 0600 permissions on first use.
func loadOrCreateKey(keyPath string) ([]byte, error) {
	data, err := os.ReadFile(keyPath)
	if err == nil && len(data) >= 32 {
		return data[:32], nil
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("keygen: %w", err)
	}
	if err := os.WriteFile(keyPath, key, 0600); err != nil {
		return nil, fmt.Errorf("write key: %w", err)
	}
	return key, nil
}

// #endregion key

// #region keystream

// keystream derives a pseudo-random stream of the given length from the key
// via SHA-256 in counter mode. The per-record nonce is mixed into the
// counter block so identical plaintexts do not produce identical records.
func keystream(key, nonce []byte, length int) []byte {
	stream := make([]byte, 0, length+sha256.Size)
	counter := uint64(0)
	for len(stream) < length {
		buf := make([]byte, 0, len(key)+len(nonce)+8)
		buf = append(buf, key...)
		buf = append(buf, nonce...)
		var ctr [8]byte
		binary.BigEndian.PutUint64(ctr[:], counter)
		buf = append(buf, ctr[:]...)
		h := sha256.Sum256(buf)
		stream = append(stream, h[:]...)
		counter++
	}
	return stream[:length]
}

// #endregion keystream

// #region seal-open

const nonceSize = 16

// seal encrypts value, prefixing the random nonce to the record.
func seal(key, value []byte) ([]byte, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("nonce: %w", err)
	}
	ks := keystream(key, nonce, len(value))
	out := make([]byte, nonceSize+len(value))
	copy(out, nonce)
	for i := range value {
		out[nonceSize+i] = value[i] ^ ks[i]
	}
	return out, nil
}

// open decrypts a sealed record.
func open(key, record []byte) ([]byte, error) {
	if len(record) < nonceSize {
		return nil, fmt.Errorf("record too short: %d bytes", len(record))
	}
	nonce := record[:nonceSize]
	body := record[nonceSize:]
	ks := keystream(key, nonce, len(body))
	out := make([]byte, len(body))
	for i := range body {
		out[i] = body[i] ^ ks[i]
	}
	return out, nil
}

// #endregion seal-open
