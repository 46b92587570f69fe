package snapshot

import (
	"encoding/hex"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/zeebo/blake3"

	"osprey-hq/talon/pkg/abac/classify"
)

// Snapshot is one compiled artifact: every destination's requirement
// key and applicable-rule list, plus the parameters the compile ran
// with. Snapshots are immutable once built; republishing means
// building a new one.
type Snapshot struct {
	ID              string                      `cbor:"id"`
	CreatedAt       time.Time                   `cbor:"created_at"`
	PolicyNames     []string                    `cbor:"policy_names"`
	AttrOrder       []string                    `cbor:"attr_order"`
	TrustThresholds []int64                     `cbor:"trust_thresholds"`
	Keys            []classify.DestinationKey   `cbor:"keys"`
	Rules           []classify.DestinationRules `cbor:"rules"`

	// Digest is the hex BLAKE3 of the snapshot's canonical CBOR
	// encoding, computed with this field empty.
	Digest string `cbor:"digest"`
}

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items. The same snapshot always
// produces identical bytes, so digests are stable across processes.
var encMode cbor.EncMode

// decMode accepts standard CBOR; unknown fields are ignored so older
// binaries can read snapshots written by newer ones.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeUnixMicro
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("snapshot: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("snapshot: CBOR decoder initialization failed: " + err.Error())
	}
}

// Encode returns the canonical CBOR encoding of the snapshot.
func Encode(s *Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

// Decode decodes a canonical CBOR snapshot.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := decMode.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ComputeDigest returns the hex BLAKE3 digest of the snapshot's
// canonical encoding with the Digest field cleared. It does not
// modify the receiver.
func (s *Snapshot) ComputeDigest() (string, error) {
	shadow := *s
	shadow.Digest = ""
	data, err := Encode(&shadow)
	if err != nil {
		return "", err
	}
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Seal computes and stores the snapshot's digest. Call once, after
// all other fields are final.
func (s *Snapshot) Seal() error {
	digest, err := s.ComputeDigest()
	if err != nil {
		return err
	}
	s.Digest = digest
	return nil
}

// Verify recomputes the digest and reports whether it matches the
// stored one.
func (s *Snapshot) Verify() (bool, error) {
	digest, err := s.ComputeDigest()
	if err != nil {
		return false, err
	}
	return digest == s.Digest, nil
}

// UsesTrustThreshold reports whether any destination key in the
// snapshot carries a trust-score threshold word.
func (s *Snapshot) UsesTrustThreshold() bool {
	for _, k := range s.Keys {
		if k.Semantics.UseTrustScoreThreshold {
			return true
		}
	}
	return false
}
