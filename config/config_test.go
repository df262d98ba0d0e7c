package config

import "testing"

func TestParseFlagsDefaults(t *testing.T) {
	f, err := ParseFlags(nil)
	if err != nil {
		t.Fatal(err)
	}
	if f.Nodes != 16 || f.Miners != 1 || f.Endorsers != 6 || f.Clients != 10 {
		t.Fatalf("unexpected defaults: %+v", f)
	}
	if got := f.InvTimeoutFor(true); got != 2*(15.0/60)*60 {
		t.Fatalf("miner inv timeout = %v, want %v", got, 2*(15.0/60)*60)
	}
	if got := f.InvTimeoutFor(false); got != 4*(15.0/60)*60 {
		t.Fatalf("non-miner inv timeout = %v, want %v", got, 4*(15.0/60)*60)
	}
}

func TestParseFlagsRejectsOversubscribedRoles(t *testing.T) {
	_, err := ParseFlags([]string{"-nodes=5", "-endorsers=3", "-clients=3"})
	if err == nil {
		t.Fatal("expected validation error when endorsers+clients exceeds nodes")
	}
}

func TestExplicitInvTimeoutOverridesDerivation(t *testing.T) {
	f, err := ParseFlags([]string{"-invTimeoutMins=0.05"})
	if err != nil {
		t.Fatal(err)
	}
	if f.InvTimeoutFor(true) != 3 || f.InvTimeoutFor(false) != 3 {
		t.Fatalf("explicit inv timeout should apply uniformly, got miner=%v other=%v", f.InvTimeoutFor(true), f.InvTimeoutFor(false))
	}
}
