package chainlog

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"
)

// #region canonical

// canonicalString builds the deterministic serialization that feeds the
// chain hash: timestamp, dimension values in table order, sorted input
// sources, sorted expression commands, noise scalar, sorted channel noise.
// Any change to this format invalidates previously written chains, so it is
// part of the trust boundary.
func canonicalString(e Entry) string {
	var b strings.Builder

	b.WriteString("ts=")
	b.WriteString(e.Timestamp.UTC().Format(time.RFC3339Nano))

	b.WriteString("|dims=")
	for i, v := range e.Vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(formatFloat(v))
	}

	b.WriteString("|sources=")
	sources := append([]string(nil), e.InputSources...)
	sort.Strings(sources)
	b.WriteString(strings.Join(sources, ","))

	b.WriteString("|expr=")
	b.WriteString(joinSorted(stringMapPairs(e.Expression)))

	b.WriteString("|noise=")
	b.WriteString(formatFloat(e.NoiseScalar))

	b.WriteString("|channels=")
	pairs := make([]string, 0, len(e.ChannelNoise))
	for k, v := range e.ChannelNoise {
		pairs = append(pairs, k+"="+formatFloat(v))
	}
	b.WriteString(joinSorted(pairs))

	return b.String()
}

// computeHash chains prevHash into the content hash.
func computeHash(prevHash, canonical string) string {
	h := sha256.Sum256([]byte(prevHash + canonical))
	return hex.EncodeToString(h[:])
}

// #endregion canonical

// #region helpers

// formatFloat renders a float with fixed precision so the canonical string
// is bit-stable across runs.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 9, 64)
}

func stringMapPairs(m map[string]string) []string {
	pairs := make([]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, k+"="+v)
	}
	return pairs
}

func joinSorted(pairs []string) string {
	sort.Strings(pairs)
	return strings.Join(pairs, ";")
}

// #endregion helpers
