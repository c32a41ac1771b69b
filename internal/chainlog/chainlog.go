// Package chainlog is the tamper-evident record of sampled affect
// transitions. Each entry's hash depends on its own canonical content and
// the previous entry's hash. Entries are written through the vault's
// insert-only path under monotonically increasing ULID keys; the schema,
// storage keys, and append-only discipline form an immutable trust boundary
// that no other component may bypass.
package chainlog

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/wrenlabs/affect-engine/internal/affect"
	"github.com/wrenlabs/affect-engine/internal/noise"
	"github.com/wrenlabs/affect-engine/internal/vault"
)

// #region keys

const (
	keyChainHead   = "affect/chain_head"
	keyRecentIndex = "affect/log_index"
	keyEntryPrefix = "affect/log/"
)

// #endregion keys

// #region log-struct

// Log owns the chain head and the bounded recent-entries ring.
type Log struct {
	vault  *vault.Vault
	logger *zap.Logger
	config Config

	mu         sync.Mutex
	lastHash   string
	entryCount uint64
	recent     []Entry // oldest first, len <= config.RecentCapacity
	entropy    *ulid.MonotonicEntropy
}

// #endregion log-struct

// #region constructor

// New restores chain-head metadata and the recent ring from the vault.
// Load failures degrade to an empty chain; corrupt individual entries are
// skipped with a warning rather than aborting the load.
func New(v *vault.Vault, logger *zap.Logger, config Config) *Log {
	if config.RecentCapacity <= 0 {
		config.RecentCapacity = DefaultConfig().RecentCapacity
	}
	l := &Log{
		vault:   v,
		logger:  logger,
		config:  config,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
	l.load()
	return l
}

func (l *Log) load() {
	headRaw, err := l.vault.Get(keyChainHead)
	if err != nil {
		if !errors.Is(err, vault.ErrNotFound) {
			l.logger.Warn("chain head load failed, starting empty", zap.Error(err))
		}
		return
	}
	var head chainHead
	if err := json.Unmarshal(headRaw, &head); err != nil {
		l.logger.Warn("chain head corrupt, starting empty", zap.Error(err))
		return
	}
	l.lastHash = head.LastHash
	l.entryCount = head.EntryCount

	idxRaw, err := l.vault.Get(keyRecentIndex)
	if err != nil {
		if !errors.Is(err, vault.ErrNotFound) {
			l.logger.Warn("recent index load failed", zap.Error(err))
		}
		return
	}
	var keys []string
	if err := json.Unmarshal(idxRaw, &keys); err != nil {
		l.logger.Warn("recent index corrupt", zap.Error(err))
		return
	}
	for _, key := range keys {
		raw, err := l.vault.Get(keyEntryPrefix + key)
		if err != nil {
			l.logger.Warn("log entry unreadable, skipping", zap.String("key", key), zap.Error(err))
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			l.logger.Warn("log entry corrupt, skipping", zap.String("key", key), zap.Error(err))
			continue
		}
		l.recent = append(l.recent, e)
	}
	if len(l.recent) > l.config.RecentCapacity {
		l.recent = l.recent[len(l.recent)-l.config.RecentCapacity:]
	}
}

// #endregion constructor

// #region append

// Append records one sampled transition. The entry is persisted
// synchronously through the vault's insert-only path before the in-memory
// chain head advances.
func (l *Log) Append(snap affect.Snapshot, inputSources []string, commands map[string]string, nz noise.Result) (Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now().UTC()
	key := ulid.MustNew(ulid.Timestamp(now), l.entropy).String()

	channelNoise := make(map[string]float64, len(nz.Amplitudes))
	for ch, amp := range nz.Amplitudes {
		channelNoise[string(ch)] = amp
	}

	e := Entry{
		Key:          key,
		Timestamp:    now,
		Vector:       snap.Vec,
		InputSources: append([]string(nil), inputSources...),
		Expression:   commands,
		NoiseScalar:  nz.Overall,
		ChannelNoise: channelNoise,
		PrevHash:     l.lastHash,
		Immutable:    true,
	}
	e.Hash = computeHash(e.PrevHash, canonicalString(e))

	raw, err := json.Marshal(e)
	if err != nil {
		return Entry{}, fmt.Errorf("marshal entry: %w", err)
	}
	if err := l.vault.PutOnce(keyEntryPrefix+key, raw); err != nil {
		return Entry{}, fmt.Errorf("persist entry: %w", err)
	}

	l.lastHash = e.Hash
	l.entryCount++
	l.recent = append(l.recent, e)
	if len(l.recent) > l.config.RecentCapacity {
		l.recent = l.recent[1:]
	}

	l.persistHead()
	return e, nil
}

// persistHead writes chain-head metadata and the rolling index. Failures
// are logged; the durable entries themselves are already safe.
func (l *Log) persistHead() {
	head, err := json.Marshal(chainHead{LastHash: l.lastHash, EntryCount: l.entryCount})
	if err == nil {
		err = l.vault.Put(keyChainHead, head)
	}
	if err != nil {
		l.logger.Warn("chain head persist failed", zap.Error(err))
	}

	keys := make([]string, len(l.recent))
	for i, e := range l.recent {
		keys[i] = e.Key
	}
	idx, err := json.Marshal(keys)
	if err == nil {
		err = l.vault.Put(keyRecentIndex, idx)
	}
	if err != nil {
		l.logger.Warn("recent index persist failed", zap.Error(err))
	}
}

// #endregion append

// #region verify

// VerifyRecentIntegrity recomputes the chain hash across the in-memory
// recent ring. A mismatch at any position invalidates every entry after it.
// The durable full history is write-once and is not re-scanned.
func (l *Log) VerifyRecentIntegrity() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.recent) == 0 {
		return true
	}
	prev := l.recent[0].PrevHash
	for i, e := range l.recent {
		if e.PrevHash != prev {
			l.logger.Warn("chain link mismatch", zap.Int("position", i), zap.String("key", e.Key))
			return false
		}
		recomputed := computeHash(prev, canonicalString(e))
		if recomputed != e.Hash {
			l.logger.Warn("chain hash mismatch", zap.Int("position", i), zap.String("key", e.Key))
			return false
		}
		prev = e.Hash
	}
	return true
}

// #endregion verify

// #region accessors

// ChainHeadHash returns the hash of the most recent entry, or "" for an
// empty chain.
func (l *Log) ChainHeadHash() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastHash
}

// EntryCount returns the total number of entries ever appended.
func (l *Log) EntryCount() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entryCount
}

// Recent returns a copy of the recent-entries ring, oldest first.
func (l *Log) Recent() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.recent...)
}

// #endregion accessors
