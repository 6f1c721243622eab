package lua

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestPrintGoesToOutput(t *testing.T) {
	var buf bytes.Buffer
	st := NewState(WithOutput(&buf))
	defer st.Close()

	if err := st.DoString(context.Background(), `print("a", 1, true)`); err != nil {
		t.Fatalf("DoString: %v", err)
	}
	if got := buf.String(); got != "a\t1\ttrue\n" {
		t.Errorf("expected tab-joined output, got %q", got)
	}
}

func TestSandboxRemovesLoaders(t *testing.T) {
	st := NewState()
	defer st.Close()

	tests := []string{
		`assert(dofile == nil)`,
		`assert(loadfile == nil)`,
		`assert(load == nil)`,
		`assert(io == nil)`,
		`assert(os == nil)`,
		`assert(package.path == "")`,
		`assert(string.upper("x") == "X")`,
		`assert(math.max(1, 2) == 2)`,
	}
	for _, code := range tests {
		if err := st.DoString(context.Background(), code); err != nil {
			t.Errorf("%s: %v", code, err)
		}
	}

	err := st.DoString(context.Background(), `require("io")`)
	if !errors.Is(err, ErrScript) {
		t.Errorf("expected require of io to fail, got %v", err)
	}
}

func TestScriptError(t *testing.T) {
	st := NewState()
	defer st.Close()

	err := st.DoString(context.Background(), `error("boom")`)
	if !errors.Is(err, ErrScript) {
		t.Fatalf("expected ErrScript, got %v", err)
	}
	if !bytes.Contains([]byte(err.Error()), []byte("boom")) {
		t.Errorf("expected message to carry the script error, got %v", err)
	}
}

func TestTimeoutStopsLoop(t *testing.T) {
	st := NewState(WithTimeout(50 * time.Millisecond))
	defer st.Close()

	start := time.Now()
	err := st.DoString(context.Background(), `while true do end`)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Error("loop was not interrupted")
	}
}

func TestDoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.lua")
	if err := os.WriteFile(path, []byte(`answer = 6 * 7`), 0644); err != nil {
		t.Fatal(err)
	}

	st := NewState()
	defer st.Close()
	if err := st.DoFile(context.Background(), path); err != nil {
		t.Fatalf("DoFile: %v", err)
	}
	if got := st.LuaState().GetGlobal("answer").String(); got != "42" {
		t.Errorf("expected 42, got %s", got)
	}
}

func TestClosedState(t *testing.T) {
	st := NewState()
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Errorf("expected second close to succeed, got %v", err)
	}
	if err := st.DoString(context.Background(), `x = 1`); !errors.Is(err, ErrStateClosed) {
		t.Errorf("expected ErrStateClosed, got %v", err)
	}
}
