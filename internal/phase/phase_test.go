package phase

import "testing"

func TestForMove(t *testing.T) {
	tests := []struct {
		move int
		want Phase
	}{
		{1, Opening},
		{15, Opening},
		{16, Middlegame},
		{40, Middlegame},
		{41, Endgame},
		{120, Endgame},
	}

	for _, tt := range tests {
		if got := ForMove(tt.move); got != tt.want {
			t.Errorf("ForMove(%d) = %v, want %v", tt.move, got, tt.want)
		}
	}
}

func TestAll(t *testing.T) {
	all := All()
	if len(all) != 3 {
		t.Fatalf("All() returned %d phases, want 3", len(all))
	}
	if all[0] != Opening || all[1] != Middlegame || all[2] != Endgame {
		t.Errorf("All() = %v, not in game order", all)
	}
}
