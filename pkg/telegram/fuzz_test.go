// SPDX-License-Identifier: Apache-2.0

package telegram

import (
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

// TestFuzz_EncodeDecodeRoundTrip encodes random valid frames and checks
// they decode back byte-exact.
func TestFuzz_EncodeDecodeRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for i := 0; i < rounds; i++ {
		address := byte(rng.Intn(256))
		payload := make([]byte, 1+rng.Intn(MaxPayloadLen))
		rng.Read(payload)

		buf, err := Encode(address, payload)
		if err != nil {
			t.Fatalf("round %d: Encode error: %v", i, err)
		}

		f, n, err := Decode(buf)
		if err != nil {
			t.Fatalf("round %d: Decode error: %v", i, err)
		}
		if n != len(buf) {
			t.Fatalf("round %d: consumed %d of %d bytes", i, n, len(buf))
		}
		if f.Address() != address || !bytes.Equal(f.Payload(), payload) {
			t.Fatalf("round %d: round trip mismatch", i)
		}
	}
}

// TestFuzz_ScannerRandomNoise interleaves valid frames with random junk
// and random splits; every embedded frame must still come out intact.
//
// Noise bytes are kept free of the start byte: a decoy start with a
// large claimed length stays legitimately incomplete until the stream
// outlives the claim, which a finite test stream cannot guarantee.
// Decoy recovery is pinned down by TestScanner_CorruptedLengthField.
func TestFuzz_ScannerRandomNoise(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds() / 10

	for i := 0; i < rounds; i++ {
		numFrames := 1 + rng.Intn(5)
		var stream []byte
		var want []byte

		for j := 0; j < numFrames; j++ {
			noise := make([]byte, rng.Intn(32))
			rng.Read(noise)
			for k := range noise {
				if noise[k] == StartByte {
					noise[k] = 0xFF
				}
			}
			stream = append(stream, noise...)

			payload := make([]byte, 1+rng.Intn(64))
			rng.Read(payload)
			buf, err := Encode(0x80, payload)
			if err != nil {
				t.Fatalf("round %d: Encode error: %v", i, err)
			}
			stream = append(stream, buf...)
			want = append(want, payload[0])
		}

		s := NewScanner()
		var got []byte
		for off := 0; off < len(stream); {
			n := 1 + rng.Intn(64)
			if off+n > len(stream) {
				n = len(stream) - off
			}
			s.Push(stream[off : off+n])
			off += n
			for f := s.Next(); f != nil; f = s.Next() {
				got = append(got, f.CommandCode())
			}
		}

		if !bytes.Equal(got, want) {
			t.Fatalf("round %d: extracted codes % 02X, want % 02X", i, got, want)
		}
	}
}

// TestFuzz_DecoderNeverPanics throws raw garbage at Decode and the
// Scanner; no input may panic or produce a malformed Frame.
func TestFuzz_DecoderNeverPanics(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	s := NewScanner()
	for i := 0; i < rounds; i++ {
		junk := make([]byte, rng.Intn(256))
		rng.Read(junk)

		_, _, _ = Decode(junk)

		s.Push(junk)
		for f := s.Next(); f != nil; f = s.Next() {
			// Any frame that does come out must satisfy the Frame
			// invariant: its checksum matches its contents.
			if f.Checksum() != frameChecksum(f.Address(), f.Payload()) {
				t.Fatalf("round %d: scanner produced frame with bad checksum", i)
			}
		}
	}
}
