// Package cidutil derives content identifiers for rendered documents.
//
// The server attaches the CID of every reply to the call trailer; clients
// recompute it over the reassembled bytes to detect truncation or corruption.
package cidutil

import (
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ErrMismatch is returned by Verify when bytes do not hash to the expected CID.
var ErrMismatch = errors.New("cidutil: cid mismatch")

// Of returns the CIDv1 (raw multicodec, sha2-256 multihash) of data.
func Of(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String returns the string form of Of(data), or "" if hashing fails.
func String(data []byte) string {
	id, err := Of(data)
	if err != nil {
		// Sum only fails for unknown codes or bad lengths.
		return ""
	}
	return id.String()
}

// Verify checks that data hashes to the CID encoded in want.
func Verify(data []byte, want string) error {
	expected, err := cid.Decode(want)
	if err != nil || !expected.Defined() {
		return fmt.Errorf("cidutil: invalid cid %q", want)
	}
	got, err := Of(data)
	if err != nil {
		return err
	}
	if !got.Equals(expected) {
		return ErrMismatch
	}
	return nil
}
