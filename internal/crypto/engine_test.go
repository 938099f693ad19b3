package crypto

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"github.com/toeirei/clipvault/internal/keystore"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(keystore.NewMemStore())
}

func TestSealOpenRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	payloads := [][]byte{
		[]byte("foo"),
		[]byte(""),
		bytes.Repeat([]byte{0x00}, 4096),
		{0xFF, 0x00, 0xFF},
	}
	for _, p := range payloads {
		blob, err := e.Seal(p)
		if err != nil {
			t.Fatalf("Seal failed: %v", err)
		}
		got, err := e.Open(blob)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		if !bytes.Equal(got, p) {
			t.Fatalf("round-trip mismatch for %d-byte payload", len(p))
		}
	}
}

func TestSealProducesDistinctBlobs(t *testing.T) {
	e := newTestEngine(t)
	a, err := e.Seal([]byte("same plaintext"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Seal([]byte("same plaintext"))
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(a, b) {
		t.Fatal("two seals of the same plaintext produced identical blobs (nonce reuse?)")
	}
}

func TestTamperDetection(t *testing.T) {
	e := newTestEngine(t)
	blob, err := e.Seal([]byte("sensitive"))
	if err != nil {
		t.Fatal(err)
	}
	for i := range blob {
		tampered := append([]byte{}, blob...)
		tampered[i] ^= 0x01
		if _, err := e.Open(tampered); !errors.Is(err, ErrCiphertextInvalid) {
			t.Fatalf("bit flip at byte %d not detected: %v", i, err)
		}
	}
	if _, err := e.Open(blob[:4]); !errors.Is(err, ErrCiphertextInvalid) {
		t.Fatalf("truncated blob not rejected: %v", err)
	}
}

func TestKeyGeneratedOnceAndPersisted(t *testing.T) {
	store := keystore.NewMemStore()
	e := NewEngine(store)
	blob, err := e.Seal([]byte("payload"))
	if err != nil {
		t.Fatal(err)
	}

	key, err := store.Get()
	if err != nil {
		t.Fatalf("key was not persisted to the secret store: %v", err)
	}
	if len(key) != KeySize {
		t.Fatalf("persisted key has length %d", len(key))
	}

	// A second engine over the same store must decrypt the first's output.
	e2 := NewEngine(store)
	got, err := e2.Open(blob)
	if err != nil {
		t.Fatalf("second engine failed to open: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("second engine decrypted %q", got)
	}
}

func TestConcurrentFirstAccessSingleKey(t *testing.T) {
	store := keystore.NewMemStore()
	e := NewEngine(store)

	const workers = 16
	blobs := make([][]byte, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := e.Seal([]byte("race"))
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			blobs[i] = b
		}(i)
	}
	wg.Wait()

	// Every blob must open under the single persisted key.
	e2 := NewEngine(store)
	for i, b := range blobs {
		if b == nil {
			continue
		}
		if _, err := e2.Open(b); err != nil {
			t.Fatalf("blob %d sealed under a different key: %v", i, err)
		}
	}
}

func TestConcurrentSealOpenAfterInit(t *testing.T) {
	e := newTestEngine(t)
	if err := e.Init(); err != nil {
		t.Fatal(err)
	}

	// Steady-state operations run without shared locking; a mix of
	// concurrent seals and opens must stay correct under the race
	// detector.
	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg := []byte{byte(i), 'p', 'a', 'y'}
			for j := 0; j < 50; j++ {
				blob, err := e.Seal(msg)
				if err != nil {
					t.Errorf("worker %d seal: %v", i, err)
					return
				}
				got, err := e.Open(blob)
				if err != nil {
					t.Errorf("worker %d open: %v", i, err)
					return
				}
				if !bytes.Equal(got, msg) {
					t.Errorf("worker %d round-trip mismatch", i)
					return
				}
			}
		}(i)
	}
	wg.Wait()
}

func TestInitReportsKeystoreFailure(t *testing.T) {
	e := NewEngine(failingStore{})
	if err := e.Init(); !errors.Is(err, keystore.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

type failingStore struct{}

func (failingStore) Get() ([]byte, error) { return nil, keystore.ErrUnavailable }
func (failingStore) Set([]byte) error     { return keystore.ErrUnavailable }
