package crypto

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math/big"
)

// SchemeName identifies the RSA engine in key material and diagnostics.
const SchemeName = "rsa"

// PublicKey is an RSA public key: modulus n and public exponent e.
//
// The transport form is a 2-byte big-endian length of the modulus bytes,
// followed by the modulus and then the exponent, both big-endian.
type PublicKey struct {
	n *big.Int
	e *big.Int
}

// Scheme implements protocol.PublicKey.
func (k *PublicKey) Scheme() string { return SchemeName }

// Bytes returns the key in transport form.
func (k *PublicKey) Bytes() []byte {
	nBytes := k.n.Bytes()
	eBytes := k.e.Bytes()
	buf := make([]byte, 2, 2+len(nBytes)+len(eBytes))
	binary.BigEndian.PutUint16(buf, uint16(len(nBytes)))
	buf = append(buf, nBytes...)
	buf = append(buf, eBytes...)
	return buf
}

// String returns the hex encoding of the transport form.
func (k *PublicKey) String() string { return hex.EncodeToString(k.Bytes()) }

// Equal reports whether both keys share modulus and exponent.
func (k *PublicKey) Equal(other *PublicKey) bool {
	return k.n.Cmp(other.n) == 0 && k.e.Cmp(other.e) == 0
}

// PrivateKey is an RSA private key: modulus n and private exponent d.
// It intentionally has no serialization method; see protocol.PrivateKey.
type PrivateKey struct {
	n *big.Int
	d *big.Int
}

// Scheme implements protocol.PrivateKey.
func (k *PrivateKey) Scheme() string { return SchemeName }

func parsePublicKey(data []byte) (*PublicKey, error) {
	if len(data) < 4 {
		return nil, errors.New("public key encoding too short")
	}
	nLen := int(binary.BigEndian.Uint16(data))
	if nLen == 0 || len(data) < 2+nLen+1 {
		return nil, errors.New("public key encoding truncated")
	}
	n := new(big.Int).SetBytes(data[2 : 2+nLen])
	e := new(big.Int).SetBytes(data[2+nLen:])
	if n.Cmp(one) <= 0 || e.Cmp(one) <= 0 {
		return nil, errors.New("public key components out of range")
	}
	return &PublicKey{n: n, e: e}, nil
}
