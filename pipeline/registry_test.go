package pipeline

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
)

func TestRegistryRegisterGet(t *testing.T) {
	r := NewRegistry()
	r.Register("double", func(_ context.Context, task Task) (Task, error) {
		return task.(int) * 2, nil
	})

	fn, ok := r.Get("double")
	if !ok {
		t.Fatal("expected registered operation")
	}
	got, err := fn(context.Background(), 21)
	if err != nil || got != 42 {
		t.Errorf("expected 42, got %v (%v)", got, err)
	}

	if _, ok := r.Get("missing"); ok {
		t.Error("expected miss for unregistered operation")
	}
}

func TestRegistryList(t *testing.T) {
	r := NewRegistry()
	r.Register("b", Identity)
	r.Register("a", Identity)

	got := r.List()
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected sorted [a b], got %v", got)
	}
}

func TestCallRegisteredOperation(t *testing.T) {
	reg := NewRegistry()
	reg.Register("triple", func(_ context.Context, task Task) (Task, error) {
		return task.(int) * 3, nil
	})

	p := New(quiet(), WithRegistry(reg))
	p.Call("triple", 1)
	p.Input(1, 2)

	results, err := p.Results()
	if err != nil {
		t.Fatalf("Results failed: %v", err)
	}
	if len(results) != 2 || results[0] != 3 || results[1] != 6 {
		t.Errorf("expected [3 6], got %v", results)
	}
}

func TestCallMissingOperationFails(t *testing.T) {
	var buf bytes.Buffer

	p := New(WithLogger(logger.NewWriter(&buf, "test")))
	p.Call("not-yet-written", 1)
	p.Input("payload")

	results, err := p.Results()
	if !errors.IsCode(err, errors.ErrCodeMissingOperation) {
		t.Fatalf("expected MISSING_OPERATION error, got %v", err)
	}
	// Tasks still drain through the identity stub so shutdown converges.
	if len(results) != 1 || results[0] != "payload" {
		t.Errorf("expected identity pass-through, got %v", results)
	}
	if !strings.Contains(buf.String(), "not-yet-written") {
		t.Errorf("expected error log naming the missing operation, got %q", buf.String())
	}
}

func TestPipelineOwnRegistry(t *testing.T) {
	p := New(quiet())
	p.Registry().Register("noop", Identity)

	if _, ok := p.Registry().Get("noop"); !ok {
		t.Error("expected operation registered on the pipeline's registry")
	}
	p.Finish()
}
