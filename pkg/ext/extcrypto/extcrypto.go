// Package extcrypto provides identifier and digest functions.
//
// MD5 and SHA-1 are offered for fingerprinting only.
package extcrypto

import (
	"context"
	"crypto/hmac"
	"crypto/md5" //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"

	"github.com/sandrolain/goadaptive/pkg/functions"
)

// All returns the cryptographic function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		UUID(),
		Hash(),
		HMAC(),
	}
}

// AllEntries returns All as [functions.FunctionEntry] values.
func AllEntries() []functions.FunctionEntry {
	all := All()
	out := make([]functions.FunctionEntry, len(all))
	for i, f := range all {
		out[i] = f
	}
	return out
}

// UUID returns the definition of uuid(), a random version 4 UUID.
func UUID() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "uuid",
		Signature: "<:s>",
		Fn: func(_ context.Context, _ ...interface{}) (interface{}, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return nil, fmt.Errorf("cannot generate uuid: %w", err)
			}
			return id.String(), nil
		},
	}
}

// Hash returns the definition of hash(text, algorithm), a lowercase hex
// digest. Algorithms: md5, sha1, sha256, sha384, sha512.
func Hash() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "hash",
		Signature: "<s-s:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			h, err := newHash(args[1].(string))
			if err != nil {
				return nil, err
			}
			h.Write([]byte(args[0].(string)))
			return hex.EncodeToString(h.Sum(nil)), nil
		},
	}
}

// HMAC returns the definition of hmac(text, key, algorithm).
func HMAC() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:      "hmac",
		Signature: "<s-s-s:s>",
		Fn: func(_ context.Context, args ...interface{}) (interface{}, error) {
			algorithm := args[2].(string)
			if _, err := newHash(algorithm); err != nil {
				return nil, err
			}
			mac := hmac.New(func() hash.Hash {
				h, _ := newHash(algorithm)
				return h
			}, []byte(args[1].(string)))
			mac.Write([]byte(args[0].(string)))
			return hex.EncodeToString(mac.Sum(nil)), nil
		},
	}
}

func newHash(algorithm string) (hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New(), nil //nolint:gosec
	case "sha1":
		return sha1.New(), nil //nolint:gosec
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	}
	return nil, fmt.Errorf("unsupported algorithm %q; use md5, sha1, sha256, sha384 or sha512", algorithm)
}
