package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys.
type Keyer interface {
	// ReplayKey identifies the outcome of replaying events on a document.
	ReplayKey(documentHash string, opts ReplayKeyOpts) string

	// ArtifactKey identifies a rendered export of a document.
	ArtifactKey(documentHash string, opts ArtifactKeyOpts) string
}

// ReplayKeyOpts are the inputs besides the document that affect a replay.
type ReplayKeyOpts struct {
	EventsHash string `json:"events"`
	ConfigHash string `json:"config,omitempty"`
}

// ArtifactKeyOpts are the inputs besides the document that affect an export.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer hashes key inputs under a fixed prefix per key type.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ReplayKey returns "replay:<sha256>".
func (DefaultKeyer) ReplayKey(documentHash string, opts ReplayKeyOpts) string {
	return hashKey("replay", documentHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(documentHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", documentHash, opts)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "<kind>:" followed by the hash of the document hash and
// the JSON form of opts.
func hashKey(kind, documentHash string, opts any) string {
	h := sha256.New()
	h.Write([]byte(documentHash))
	h.Write([]byte{0})
	_ = json.NewEncoder(h).Encode(opts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}
