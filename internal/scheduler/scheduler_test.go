package scheduler

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestRegisterDefaults(t *testing.T) {
	s := New(Options{}, zerolog.Nop())
	if err := s.Register(func() {}, func() {}); err != nil {
		t.Fatalf("default specs should register: %v", err)
	}
}

func TestRegisterInvalidSpec(t *testing.T) {
	s := New(Options{RolloverSpec: "not a cron spec"}, zerolog.Nop())
	if err := s.Register(func() {}, nil); err == nil {
		t.Fatal("invalid cron spec should fail registration")
	}
}

func TestRegisterWithoutSave(t *testing.T) {
	s := New(Options{}, zerolog.Nop())
	if err := s.Register(func() {}, nil); err != nil {
		t.Fatalf("nil save job should be allowed: %v", err)
	}
}
