package ecelgamal

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"errors"
	"math/rand/v2"
	"sync"
	"testing"
	"testing/iotest"

	"git.gammaspectra.live/EllipticPIR/ecelgamal/crypto/curve25519"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/mg"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/types"
	"git.gammaspectra.live/EllipticPIR/ecelgamal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPrivateKey = types.MustBytes32FromString[curve25519.PrivateKeyBytes]("7ef6add2bed59a79ba6edcfba48fde7a5531754af59376346c8b5284eef25207")
	testPublicKey  = types.MustBytes32FromString[curve25519.PublicKeyBytes]("9c76823dbdb9bf048fc5c2af000e28a148ee021999fb7f21ca1f84b8fe73d7e8")
	testR          = types.MustBytes32FromString[curve25519.PrivateKeyBytes]("42ff2d984ae5a28f7d026987c7109a7b3a1d3658825a0917e1693e83a5715d09")
	testCipher     = types.MustBytes64FromString[[CipherSize]byte]("11a94eb718537e947d0ff30cddae16aeab429eac092b220006b19cccb526b430eb7683c0df903a88f6f10952bca4d645284ff7ed95c6a4e967f5e7ae22c933cb")
)

const testMessage = 0x12345678 & (mg.DefaultMmax - 1)

const testMmax = 1 << 16

var testTable = sync.OnceValue(func() mg.Table {
	t, err := mg.Build(context.Background(), testMmax, nil)
	if err != nil {
		panic(err)
	}
	return t
})

// windowTable Sorted table of [msg - 2048, msg + 2048), enough to decrypt msg without the full table
func windowTable(tb testing.TB, msg uint32) mg.Table {
	tb.Helper()
	table, err := mg.GenerateRange(context.Background(), msg-2048, 4096, nil)
	require.NoError(tb, err)
	mg.Sort(table)
	return table
}

func TestKeys(t *testing.T) {
	priv := PrivateKeyFromBytes(testPrivateKey)
	pub := priv.PublicKey()

	assert.Equal(t, testPublicKey, pub.Bytes())
	assert.Equal(t, testPrivateKey, priv.Bytes())
	assert.Equal(t, "7ef6add2bed59a79ba6edcfba48fde7a5531754af59376346c8b5284eef25207", priv.String())
	assert.Equal(t, "9c76823dbdb9bf048fc5c2af000e28a148ee021999fb7f21ca1f84b8fe73d7e8", pub.String())

	decoded, err := PublicKeyFromBytes(testPublicKey)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(pub))

	assert.True(t, PrivateKeyFromBytes(testPrivateKey).Equal(priv))

	other, err := NewPrivateKey(nil)
	require.NoError(t, err)
	assert.False(t, other.Equal(priv))
	assert.False(t, other.PublicKey().Equal(pub))
}

func TestPrivateKeyReduced(t *testing.T) {
	// l + 1
	unreduced := types.MustBytes32FromString[curve25519.PrivateKeyBytes]("eed3f55c1a631258d69cf7a2def9de1400000000000000000000000000000010")
	k := PrivateKeyFromBytes(unreduced)

	var one curve25519.PrivateKeyBytes
	one[0] = 1
	assert.Equal(t, one, k.Bytes())
	assert.True(t, k.Equal(PrivateKeyFromBytes(one)))
	assert.Equal(t, curve25519.GeneratorG.Bytes, k.PublicKey().Bytes())
}

func TestNewPrivateKey(t *testing.T) {
	t.Run("Entropy", func(t *testing.T) {
		entropy := bytes.Repeat([]byte{0x01}, curve25519.PrivateKeySize)
		k, err := NewPrivateKey(bytes.NewReader(entropy))
		require.NoError(t, err)
		assert.Equal(t, curve25519.PrivateKeyBytes(entropy), k.Bytes())
	})

	t.Run("Failure", func(t *testing.T) {
		failure := errors.New("no entropy")
		_, err := NewPrivateKey(iotest.ErrReader(failure))
		require.ErrorIs(t, err, failure)
	})
}

func TestPublicKeyFromBytes(t *testing.T) {
	for name, s := range map[string]string{
		// y = 2 has no x on the curve
		"OffCurve": "0200000000000000000000000000000000000000000000000000000000000000",
		// y = p, the unreduced encoding of y = 0
		"Unreduced": "edffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f",
		"NegativeZero": "0100000000000000000000000000000000000000000000000000000000000080",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := PublicKeyFromBytes(types.MustBytes32FromString[curve25519.PublicKeyBytes](s))
			require.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestEncryptVector(t *testing.T) {
	priv := PrivateKeyFromBytes(testPrivateKey)
	pub, err := PublicKeyFromBytes(testPublicKey)
	require.NoError(t, err)
	r := testR

	expected, err := CipherFromBytes(testCipher[:])
	require.NoError(t, err)

	t.Run("PublicKey", func(t *testing.T) {
		c := pub.EncryptWithScalar(testMessage, r.Scalar())
		assert.Equal(t, expected, c)
		assert.Equal(t, testCipher, c.Bytes())
	})

	t.Run("PrivateKey", func(t *testing.T) {
		c := priv.EncryptWithScalar(testMessage, r.Scalar())
		assert.Equal(t, expected, c)
	})

	t.Run("Entropy", func(t *testing.T) {
		for _, e := range []Encryptor{pub, priv} {
			c, err := e.Encrypt(testMessage, bytes.NewReader(testR[:]))
			require.NoError(t, err)
			assert.Equal(t, expected, c)
		}
	})

	t.Run("EntropyFailure", func(t *testing.T) {
		failure := errors.New("no entropy")
		for _, e := range []Encryptor{pub, priv} {
			_, err := e.Encrypt(testMessage, iotest.ErrReader(failure))
			require.ErrorIs(t, err, failure)
		}
	})
}

func TestDecryptVector(t *testing.T) {
	d := NewDecryptor(windowTable(t, testMessage), 0)
	c, err := CipherFromBytes(testCipher[:])
	require.NoError(t, err)

	msg, err := d.Decrypt(PrivateKeyFromBytes(testPrivateKey), &c)
	require.NoError(t, err)
	assert.Equal(t, uint32(testMessage), msg)

	var m curve25519.Scalar
	curve25519.ScalarFromUint64(&m, testMessage)
	point, err := PrivateKeyFromBytes(testPrivateKey).DecryptPoint(&c)
	require.NoError(t, err)
	assert.Equal(t, new(curve25519.ConstantTimePublicKey).ScalarBaseMult(&m).Bytes(), point)

	// public key bytes used as a private key
	_, err = d.Decrypt(PrivateKeyFromBytes(curve25519.PrivateKeyBytes(testPublicKey)), &c)
	require.ErrorIs(t, err, ErrDecryptionFailed)
	assert.NotErrorIs(t, err, ErrInvalidEncoding)
}

func TestEncryptPathsAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 64; i++ {
		priv, err := NewPrivateKey(nil)
		require.NoError(t, err)
		pub := priv.PublicKey()

		var r curve25519.Scalar
		_, err = curve25519.RandomScalar(&r, crand.Reader)
		require.NoError(t, err)

		msg := rng.Uint32()
		assert.Equal(t, priv.EncryptWithScalar(msg, &r), pub.EncryptWithScalar(msg, &r), "message %d", msg)
	}
}

func TestRoundTrip(t *testing.T) {
	table := testTable()
	searchers := map[string]mg.Searcher{
		"Table": table,
		"Index": mg.NewIndex(table),
	}

	priv, err := NewPrivateKey(nil)
	require.NoError(t, err)
	pub := priv.PublicKey()

	messages := []uint32{0, 1, 2, testMmax / 2, testMmax - 1}
	rng := rand.New(rand.NewPCG(3, 4))
	for i := 0; i < 200; i++ {
		messages = append(messages, rng.Uint32N(testMmax))
	}

	for name, s := range searchers {
		t.Run(name, func(t *testing.T) {
			d := NewDecryptor(s, 0)
			for _, msg := range messages {
				for _, e := range []Encryptor{pub, priv} {
					c, err := e.Encrypt(msg, nil)
					require.NoError(t, err)

					decrypted, err := d.Decrypt(priv, &c)
					require.NoError(t, err)
					require.Equal(t, msg, decrypted)
				}
			}
		})
	}
}

func TestDecryptOutOfRange(t *testing.T) {
	d := NewDecryptor(testTable(), 0)
	priv, err := NewPrivateKey(nil)
	require.NoError(t, err)

	for _, msg := range []uint32{testMmax, testMmax + 1, 1 << 31, 1<<32 - 1} {
		c, err := priv.Encrypt(msg, nil)
		require.NoError(t, err)
		_, err = d.Decrypt(priv, &c)
		require.ErrorIs(t, err, ErrDecryptionFailed, "message %d", msg)
	}
}

func TestDecryptWrongKey(t *testing.T) {
	d := NewDecryptor(testTable(), 0)
	priv, err := NewPrivateKey(nil)
	require.NoError(t, err)

	const trials = 100
	var failures int
	for i := 0; i < trials; i++ {
		wrong, err := NewPrivateKey(nil)
		require.NoError(t, err)

		c, err := priv.PublicKey().Encrypt(uint32(i), nil)
		require.NoError(t, err)

		if _, err = d.Decrypt(wrong, &c); errors.Is(err, ErrDecryptionFailed) {
			failures++
		}
	}
	assert.Equal(t, trials, failures)
}

func TestDecryptMalformed(t *testing.T) {
	d := NewDecryptor(testTable(), 0)
	priv := PrivateKeyFromBytes(testPrivateKey)

	valid, err := priv.Encrypt(7, nil)
	require.NoError(t, err)

	offCurve := types.MustBytes32FromString[curve25519.PublicKeyBytes]("0200000000000000000000000000000000000000000000000000000000000000")

	for name, c := range map[string]Cipher{
		"C1": {C1: offCurve, C2: valid.C2},
		"C2": {C1: valid.C1, C2: offCurve},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := d.Decrypt(priv, &c)
			require.ErrorIs(t, err, ErrDecryptionFailed)
			require.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}
}

func TestDecryptCache(t *testing.T) {
	d := NewDecryptor(testTable(), 16)
	priv, err := NewPrivateKey(nil)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		c, err := priv.Encrypt(42, nil)
		require.NoError(t, err)
		msg, err := d.Decrypt(priv, &c)
		require.NoError(t, err)
		require.Equal(t, uint32(42), msg)
	}

	hits, misses := d.CacheStats()
	assert.Equal(t, uint64(9), hits)
	assert.Equal(t, uint64(1), misses)

	// failed lookups are not cached
	c, err := priv.Encrypt(testMmax, nil)
	require.NoError(t, err)
	_, err = d.Decrypt(priv, &c)
	require.ErrorIs(t, err, ErrDecryptionFailed)
	_, err = d.Decrypt(priv, &c)
	require.ErrorIs(t, err, ErrDecryptionFailed)

	hits, misses = d.CacheStats()
	assert.Equal(t, uint64(9), hits)
	assert.Equal(t, uint64(3), misses)

	hits, misses = NewDecryptor(testTable(), 0).CacheStats()
	assert.Zero(t, hits)
	assert.Zero(t, misses)
}

func TestDecryptConcurrent(t *testing.T) {
	d := NewDecryptor(testTable(), 64)
	priv, err := NewPrivateKey(nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				msg := uint32((r*50 + i) % 100)
				c, err := priv.Encrypt(msg, nil)
				if err != nil {
					errs <- err
					return
				}
				decrypted, err := d.Decrypt(priv, &c)
				if err != nil {
					errs <- err
					return
				}
				if decrypted != msg {
					errs <- errors.New("wrong message")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestCipherEncoding(t *testing.T) {
	c, err := CipherFromBytes(testCipher[:])
	require.NoError(t, err)

	assert.Equal(t, "11a94eb718537e947d0ff30cddae16aeab429eac092b220006b19cccb526b430eb7683c0df903a88f6f10952bca4d645284ff7ed95c6a4e967f5e7ae22c933cb", c.String())
	assert.Equal(t, testCipher[:], c.AppendBinary(nil))

	_, err = CipherFromBytes(testCipher[:CipherSize-1])
	require.ErrorIs(t, err, ErrInvalidEncoding)

	type message struct {
		Key    *PublicKey `json:"key"`
		Cipher Cipher     `json:"cipher"`
	}
	pub, err := PublicKeyFromBytes(testPublicKey)
	require.NoError(t, err)

	data, err := utils.MarshalJSON(message{Key: pub, Cipher: c})
	require.NoError(t, err)
	assert.Equal(t, `{"key":"`+pub.String()+`","cipher":"`+c.String()+`"}`, string(data))

	var decoded message
	require.NoError(t, utils.UnmarshalJSON(data, &decoded))
	assert.Equal(t, c, decoded.Cipher)
	assert.True(t, pub.Equal(decoded.Key))

	require.ErrorIs(t, decoded.Cipher.UnmarshalJSON([]byte(`"00"`)), ErrInvalidEncoding)
}

func TestPublicKeySmallOrder(t *testing.T) {
	for name, s := range map[string]string{
		"Identity": "0100000000000000000000000000000000000000000000000000000000000000",
		// (sqrt(-1), 0), order 4
		"Zero": "0000000000000000000000000000000000000000000000000000000000000000",
		// (0, -1), order 2
		"MinusOne": "ecffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff7f",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := PublicKeyFromBytes(types.MustBytes32FromString[curve25519.PublicKeyBytes](s))
			require.ErrorIs(t, err, ErrInvalidEncoding)
		})
	}

	// the zero private key maps to the identity, which does not decode back
	zero := PrivateKeyFromBytes(curve25519.ZeroPrivateKeyBytes)
	_, err := PublicKeyFromBytes(zero.PublicKey().Bytes())
	require.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestKeyJSONStrict(t *testing.T) {
	for _, input := range []string{
		`""`,
		`null`,
		``,
		`"00"`,
		`"` + testPrivateKey.String() + `0"`,
		`"` + testPrivateKey.String()[:62] + `zz"`,
		testPrivateKey.String(),
	} {
		var priv PrivateKey
		require.ErrorIs(t, priv.UnmarshalJSON([]byte(input)), ErrInvalidEncoding, "private key %q", input)
		require.Equal(t, curve25519.ZeroPrivateKeyBytes, priv.Bytes(), "private key %q", input)

		var pub PublicKey
		require.ErrorIs(t, pub.UnmarshalJSON([]byte(input)), ErrInvalidEncoding, "public key %q", input)
	}

	var pub PublicKey
	require.NoError(t, pub.UnmarshalJSON([]byte(`"`+testPublicKey.String()+`"`)))
	assert.Equal(t, testPublicKey, pub.Bytes())

	zero := curve25519.ZeroPublicKeyBytes
	require.ErrorIs(t, pub.UnmarshalJSON([]byte(`"`+zero.String()+`"`)), ErrInvalidEncoding)
}

func TestPrivateKeyJSON(t *testing.T) {
	priv := PrivateKeyFromBytes(testPrivateKey)
	data, err := utils.MarshalJSON(priv)
	require.NoError(t, err)
	assert.Equal(t, `"`+priv.String()+`"`, string(data))

	var decoded PrivateKey
	require.NoError(t, utils.UnmarshalJSON(data, &decoded))
	assert.True(t, priv.Equal(&decoded))
}

// TestDecryptFullTable Fixed vector against the default sized table, built in memory
func TestDecryptFullTable(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping full table generation in short mode")
	}

	table, err := mg.Build(context.Background(), mg.DefaultMmax, nil)
	require.NoError(t, err)

	d := NewDecryptor(table, 0)
	c, err := CipherFromBytes(testCipher[:])
	require.NoError(t, err)

	msg, err := d.Decrypt(PrivateKeyFromBytes(testPrivateKey), &c)
	require.NoError(t, err)
	assert.Equal(t, uint32(testMessage), msg)

	_, err = d.Decrypt(PrivateKeyFromBytes(curve25519.PrivateKeyBytes(testPublicKey)), &c)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func FuzzDecrypt(f *testing.F) {
	f.Add(testCipher[:])
	f.Add(make([]byte, CipherSize))

	table := windowTable(f, testMessage)
	d := NewDecryptor(table, 0)
	priv := PrivateKeyFromBytes(testPrivateKey)

	f.Fuzz(func(t *testing.T, buf []byte) {
		c, err := CipherFromBytes(buf)
		if err != nil {
			require.ErrorIs(t, err, ErrInvalidEncoding)
			return
		}
		msg, err := d.Decrypt(priv, &c)
		if err != nil {
			require.ErrorIs(t, err, ErrDecryptionFailed)
			return
		}
		assert.True(t, msg >= testMessage-2048 && msg < testMessage+2048)
	})
}

func BenchmarkDecrypt(b *testing.B) {
	table := testTable()
	priv, err := NewPrivateKey(nil)
	require.NoError(b, err)

	ciphers := make([]Cipher, 256)
	for i := range ciphers {
		ciphers[i], err = priv.Encrypt(uint32(i*251)%testMmax, nil)
		require.NoError(b, err)
	}

	b.Run("Table", func(b *testing.B) {
		d := NewDecryptor(table, 0)
		for i := 0; i < b.N; i++ {
			_, _ = d.Decrypt(priv, &ciphers[i%len(ciphers)])
		}
	})
	b.Run("Index", func(b *testing.B) {
		d := NewDecryptor(mg.NewIndex(table), 0)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = d.Decrypt(priv, &ciphers[i%len(ciphers)])
		}
	})
}

func BenchmarkEncrypt(b *testing.B) {
	priv := PrivateKeyFromBytes(testPrivateKey)
	pub := priv.PublicKey()
	r := testR

	b.Run("PublicKey", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			pub.EncryptWithScalar(uint32(i), r.Scalar())
		}
	})
	b.Run("PrivateKey", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			priv.EncryptWithScalar(uint32(i), r.Scalar())
		}
	})
}
