package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "a", []byte("svg"), 0); err != nil {
			t.Fatal(err)
		}
		data, hit, err := c.Get(ctx, "a")
		if err != nil || !hit || string(data) != "svg" {
			t.Errorf("Get = %q, %v, %v", data, hit, err)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
			t.Errorf("hit = %v, err = %v", hit, err)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		if err := c.Set(ctx, "b", []byte("x"), time.Minute); err != nil {
			t.Fatal(err)
		}
		now = now.Add(30 * time.Second)
		if _, hit, _ := c.Get(ctx, "b"); !hit {
			t.Error("entry expired early")
		}
		now = now.Add(time.Minute)
		if _, hit, _ := c.Get(ctx, "b"); hit {
			t.Error("expired entry returned")
		}
		if _, err := os.Stat(c.path("b")); !os.IsNotExist(err) {
			t.Error("expired entry left on disk")
		}
	})

	t.Run("Corrupt", func(t *testing.T) {
		if err := c.Set(ctx, "c", []byte("x"), 0); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(c.path("c"), []byte("{"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, hit, err := c.Get(ctx, "c"); hit || err != nil {
			t.Errorf("hit = %v, err = %v", hit, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := c.Delete(ctx, "a"); err != nil {
			t.Fatal(err)
		}
		if err := c.Delete(ctx, "a"); err != nil {
			t.Errorf("second Delete: %v", err)
		}
		if _, hit, _ := c.Get(ctx, "a"); hit {
			t.Error("deleted entry returned")
		}
	})

	t.Run("Clear", func(t *testing.T) {
		for _, k := range []string{"x", "y", "z"} {
			if err := c.Set(ctx, k, []byte(k), 0); err != nil {
				t.Fatal(err)
			}
		}
		if err := c.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		entries, err := os.ReadDir(c.Dir())
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) != 0 {
			t.Errorf("%d entries left after Clear", len(entries))
		}
	})
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash is not deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs share a hash")
	}
	if len(h1) != 64 {
		t.Errorf("len = %d, want 64", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	tests := []struct {
		name string
		a, b ArtifactKeyOpts
	}{
		{"Format", ArtifactKeyOpts{Format: "svg"}, ArtifactKeyOpts{Format: "dot"}},
		{"Config", ArtifactKeyOpts{Format: "svg", ConfigHash: "a"}, ArtifactKeyOpts{Format: "svg", ConfigHash: "b"}},
		{"LaneMaxBar", ArtifactKeyOpts{Format: "svg", LaneMaxBar: 2}, ArtifactKeyOpts{Format: "svg", LaneMaxBar: 4}},
		{"Detailed", ArtifactKeyOpts{Format: "dot"}, ArtifactKeyOpts{Format: "dot", Detailed: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if k.ArtifactKey("h", tt.a) == k.ArtifactKey("h", tt.b) {
				t.Error("different options share a key")
			}
		})
	}

	if got := k.ArtifactKey("h", ArtifactKeyOpts{Format: "svg"}); !strings.HasPrefix(got, "artifact:svg:") {
		t.Errorf("ArtifactKey = %s", got)
	}
	if k.DocumentKey("h", "c1") == k.DocumentKey("h", "c2") {
		t.Error("DocumentKey ignores the config hash")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	tests := []struct {
		name  string
		inner Keyer
	}{
		{"Explicit", inner},
		{"NilInner", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewScopedKeyer(tt.inner, "v1:")
			opts := ArtifactKeyOpts{Format: "svg"}
			if got, want := k.ArtifactKey("h", opts), "v1:"+inner.ArtifactKey("h", opts); got != want {
				t.Errorf("ArtifactKey = %s, want %s", got, want)
			}
			if got, want := k.DocumentKey("h", "c"), "v1:"+inner.DocumentKey("h", "c"); got != want {
				t.Errorf("DocumentKey = %s, want %s", got, want)
			}
		})
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) != nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || !errors.Is(err, ErrNetwork) {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if err.Error() != ErrNetwork.Error() {
		t.Errorf("message = %q", err.Error())
	}
	if IsRetryable(ErrNetwork) {
		t.Error("plain error reported retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond
	ctx := context.Background()
	errPermanent := errors.New("permanent")

	tests := []struct {
		name      string
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"FirstTry", 0, nil, 1, nil},
		{"NotRetryable", 5, errPermanent, 1, errPermanent},
		{"RetriedOnce", 1, Retryable(ErrNetwork), 2, nil},
		{"GivesUp", 5, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error { return Retryable(ErrNetwork) })
	if err != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestClassify(t *testing.T) {
	opErr := &net.OpError{Op: "dial", Net: "tcp", Err: fmt.Errorf("connection refused")}
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"Nil", nil, false},
		{"Missing", redis.Nil, false},
		{"Network", opErr, true},
		{"Other", errors.New("WRONGTYPE"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			if IsRetryable(got) != tt.retryable {
				t.Errorf("classify(%v) = %v, retryable want %v", tt.err, got, tt.retryable)
			}
			if tt.err == redis.Nil && got != redis.Nil {
				t.Errorf("redis.Nil changed to %v", got)
			}
		})
	}
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := NewRedisCache(ctx, RedisConfig{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("expected an error for an unreachable server")
	}
}

func TestCompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte(`{"lane":1,"measures":[1,2,3,4]}`), 64)
	packed := compress(data)
	if len(packed) >= len(data) {
		t.Errorf("compressed %d bytes to %d", len(data), len(packed))
	}
	got, err := decompress(packed)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, data) {
		t.Error("round trip changed the data")
	}
	if _, err := decompress([]byte("not zstd")); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestSQLiteCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewSQLiteCache(filepath.Join(t.TempDir(), "sub", "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	t.Run("SetGet", func(t *testing.T) {
		if err := c.Set(ctx, "a", []byte("one"), 0); err != nil {
			t.Fatal(err)
		}
		if err := c.Set(ctx, "a", []byte("two"), 0); err != nil {
			t.Fatal(err)
		}
		got, hit, err := c.Get(ctx, "a")
		if err != nil || !hit || string(got) != "two" {
			t.Errorf("Get = %q, %v, %v", got, hit, err)
		}
	})

	t.Run("Miss", func(t *testing.T) {
		if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
			t.Errorf("hit = %v, err = %v", hit, err)
		}
	})

	t.Run("Expiry", func(t *testing.T) {
		if err := c.Set(ctx, "b", []byte("x"), time.Minute); err != nil {
			t.Fatal(err)
		}
		if _, hit, _ := c.Get(ctx, "b"); !hit {
			t.Error("entry expired early")
		}
		now = now.Add(2 * time.Minute)
		if _, hit, _ := c.Get(ctx, "b"); hit {
			t.Error("expired entry returned")
		}
	})

	t.Run("Prune", func(t *testing.T) {
		for _, k := range []string{"p1", "p2"} {
			if err := c.Set(ctx, k, []byte("x"), time.Second); err != nil {
				t.Fatal(err)
			}
		}
		now = now.Add(time.Minute)
		n, err := c.Prune(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if n != 2 {
			t.Errorf("pruned %d, want 2", n)
		}
	})

	t.Run("Clear", func(t *testing.T) {
		if err := c.Clear(ctx); err != nil {
			t.Fatal(err)
		}
		if _, hit, _ := c.Get(ctx, "a"); hit {
			t.Error("entry survived Clear")
		}
	})
}
