package crypto

import (
	"bytes"
	"testing"
)

func FuzzEncryptDecrypt(f *testing.F) {
	// Add seed corpus
	f.Add([]byte{})
	f.Add([]byte("hello"))
	f.Add([]byte{0x00, 0x00, 0x01})
	f.Add(bytes.Repeat([]byte{0xaa}, 21))
	f.Add(bytes.Repeat([]byte{0xff}, 64))

	engine, err := New(testConfig)
	if err != nil {
		f.Fatalf("creating engine: %v", err)
	}
	pair, err := engine.GenerateKeys()
	if err != nil {
		f.Fatalf("generating keys: %v", err)
	}
	max, err := engine.MaxPlaintext(pair.Public)
	if err != nil {
		f.Fatalf("querying block size: %v", err)
	}

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		ct, err := engine.Encrypt(plaintext, pair.Public)

		// Invariant 1: the size contract is exact, never a silent truncation
		if len(plaintext) > max {
			if err == nil {
				t.Fatalf("oversized plaintext of %d bytes must not encrypt", len(plaintext))
			}
			return
		}
		if err != nil {
			t.Fatalf("encryption failed: %v", err)
		}

		// Invariant 2: ciphertext is one full modulus-sized block
		if len(ct) != (pair.Public.(*PublicKey).n.BitLen()+7)/8 {
			t.Errorf("ciphertext block has %d bytes", len(ct))
		}

		// Invariant 3: round trip preserves the plaintext exactly
		got, err := engine.Decrypt(ct, pair.Private)
		if err != nil {
			t.Fatalf("decryption failed: %v", err)
		}
		if !bytes.Equal(plaintext, got) {
			t.Errorf("round trip failed: got %x, want %x", got, plaintext)
		}
	})
}

func FuzzParsePublicKey(f *testing.F) {
	engine, err := New(testConfig)
	if err != nil {
		f.Fatalf("creating engine: %v", err)
	}
	pair, err := engine.GenerateKeys()
	if err != nil {
		f.Fatalf("generating keys: %v", err)
	}

	f.Add([]byte{})
	f.Add([]byte{0x00, 0x01, 0xab, 0x03})
	f.Add(pair.Public.Bytes())

	f.Fuzz(func(t *testing.T, data []byte) {
		key, err := engine.ParsePublicKey(data)
		if err != nil {
			return
		}
		// Whatever parses must re-serialize to something that parses back to
		// the same key.
		again, err := engine.ParsePublicKey(key.Bytes())
		if err != nil {
			t.Fatalf("reparsing serialized key: %v", err)
		}
		if !again.(*PublicKey).Equal(key.(*PublicKey)) {
			t.Error("serialize/parse round trip changed the key")
		}
	})
}
