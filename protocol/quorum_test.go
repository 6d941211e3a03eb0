// Package protocol
//
// @author: xwc1125
package protocol

import (
	"errors"
	"testing"
)

func TestEvaluate(t *testing.T) {
	for f := 0; f <= 10; f++ {
		for c := 0; c <= 3*f+4; c++ {
			qc := Evaluate(PhasePrepare, c, f)
			if qc.Required != 2*f+1 {
				t.Fatalf("f=%d: required mismatch: have %d, want %d", f, qc.Required, 2*f+1)
			}
			want := c >= 2*f+1
			if qc.Agreed() != want {
				t.Errorf("f=%d c=%d: agreed mismatch: have %v, want %v", f, c, qc.Agreed(), want)
			}
			if (qc.Err() == nil) != want {
				t.Errorf("f=%d c=%d: err mismatch: %v", f, c, qc.Err())
			}
		}
	}
}

func TestEvaluateSingleValidator(t *testing.T) {
	if qc := Evaluate(PhaseCommit, 1, 0); !qc.Agreed() {
		t.Error("f=0 should agree with one participant")
	}
	if qc := Evaluate(PhaseCommit, 0, 0); qc.Agreed() {
		t.Error("f=0 should not agree without participants")
	}
}

func TestQuorumError(t *testing.T) {
	err := Evaluate(PhasePrepare, 0, 1).Err()
	if err == nil {
		t.Fatal("expected quorum error")
	}
	if err.Error() != "insufficient prepare messages: 0/3" {
		t.Errorf("message mismatch: %q", err.Error())
	}
	if !errors.Is(err, ErrQuorumNotReached) {
		t.Error("quorum error should match ErrQuorumNotReached")
	}
	var qe *QuorumError
	if !errors.As(err, &qe) || qe.Phase != PhasePrepare || qe.Count != 0 || qe.Required != 3 {
		t.Errorf("quorum error fields mismatch: %+v", qe)
	}

	err = Evaluate(PhaseCommit, 2, 1).Err()
	if err.Error() != "insufficient commit messages: 2/3" {
		t.Errorf("message mismatch: %q", err.Error())
	}
}

func TestFaultTolerantNum(t *testing.T) {
	for n := 1; n <= 100; n++ {
		f := FaultTolerantNum(n)
		if 3*f+1 > n {
			t.Errorf("n=%d: 3f+1=%d exceeds n", n, 3*f+1)
		}
		if 3*(f+1)+1 <= n {
			t.Errorf("n=%d: f=%d is not maximal", n, f)
		}
		if QuorumSize(f) > n {
			t.Errorf("n=%d: quorum %d exceeds n", n, QuorumSize(f))
		}
	}
	if FaultTolerantNum(4) != 1 || FaultTolerantNum(7) != 2 || FaultTolerantNum(1) != 0 {
		t.Error("fault tolerance mismatch for n=1,4,7")
	}
}

func TestViewPrimaryIndex(t *testing.T) {
	for v := View(0); v < 50; v++ {
		if got := v.PrimaryIndex(7); got != int(uint64(v)%7) {
			t.Errorf("view %d: primary index mismatch: have %d", v, got)
		}
		if v.Next().Cmp(v) != 1 {
			t.Errorf("view %d: next should be larger", v)
		}
	}
	if View(3).PrimaryIndex(0) != -1 {
		t.Error("empty set should not have a primary")
	}
}

func TestPhaseText(t *testing.T) {
	for _, phase := range []Phase{PhasePrePrepare, PhasePrepare, PhaseCommit, PhaseViewChange} {
		text, err := phase.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var p Phase
		if err := p.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if p != phase {
			t.Errorf("phase mismatch: have %v, want %v", p, phase)
		}
	}
	var p Phase
	if err := p.UnmarshalText([]byte("prepare")); err != nil || p != PhasePrepare {
		t.Errorf("case insensitive parse failed: %v %v", p, err)
	}
	if err := p.UnmarshalText([]byte("unknown")); err == nil {
		t.Error("unknown phase should fail")
	}
}
