package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/dgrijalva/jwt-go"
)

// SigningMethodES256K signs tokens with ECDSA over secp256k1 and SHA-256.
// Signatures are the 64-byte R || S concatenation.
var SigningMethodES256K = &signingMethodES256K{}

type signingMethodES256K struct{}

func init() {
	jwt.RegisterSigningMethod(SigningMethodES256K.Alg(), func() jwt.SigningMethod {
		return SigningMethodES256K
	})
}

func (m *signingMethodES256K) Alg() string {
	return "ES256K"
}

func (m *signingMethodES256K) Sign(signingString string, key interface{}) (string, error) {
	priv, ok := key.(*secp256k1.PrivateKey)
	if !ok {
		return "", jwt.ErrInvalidKeyType
	}
	h := sha256.Sum256([]byte(signingString))
	// Compact signatures carry a leading recovery byte.
	compact := ecdsa.SignCompact(priv, h[:], true)
	return jwt.EncodeSegment(compact[1:]), nil
}

func (m *signingMethodES256K) Verify(signingString, signature string, key interface{}) error {
	pub, ok := key.(*secp256k1.PublicKey)
	if !ok {
		return jwt.ErrInvalidKeyType
	}
	sig, err := jwt.DecodeSegment(signature)
	if err != nil {
		return err
	}
	if len(sig) != 64 {
		return jwt.ErrSignatureInvalid
	}
	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(sig[:32]); overflow {
		return jwt.ErrSignatureInvalid
	}
	if overflow := s.SetByteSlice(sig[32:]); overflow {
		return jwt.ErrSignatureInvalid
	}
	h := sha256.Sum256([]byte(signingString))
	if !ecdsa.NewSignature(&r, &s).Verify(h[:], pub) {
		return jwt.ErrSignatureInvalid
	}
	return nil
}

func ES256KKeys(priv *secp256k1.PrivateKey) Keys {
	return Keys{Method: SigningMethodES256K, Sign: priv, Verify: priv.PubKey()}
}

// ParseSecp256k1Key decodes a hex private key, with or without a 0x prefix.
func ParseSecp256k1Key(input string) (*secp256k1.PrivateKey, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(input), "0x"))
	if err != nil {
		return nil, err
	}
	if len(raw) != secp256k1.PrivKeyBytesLen {
		return nil, errors.New("invalid secp256k1 private key length")
	}
	return secp256k1.PrivKeyFromBytes(raw), nil
}
