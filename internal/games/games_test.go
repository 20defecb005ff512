package games

import "testing"

func TestFlipIsDoubleOrNothing(t *testing.T) {
	d := NewDealer(1)
	sawWin, sawLoss := false, false
	for i := 0; i < 100; i++ {
		out := d.Flip(50)
		if out.Won {
			sawWin = true
			if out.Delta != 50 {
				t.Fatalf("win delta %d want 50", out.Delta)
			}
		} else {
			sawLoss = true
			if out.Delta != -50 {
				t.Fatalf("loss delta %d want -50", out.Delta)
			}
		}
	}
	if !sawWin || !sawLoss {
		t.Fatalf("100 flips should show both outcomes: win=%v loss=%v", sawWin, sawLoss)
	}
}

func TestFlipDeterministicForSeed(t *testing.T) {
	a, b := NewDealer(42), NewDealer(42)
	for i := 0; i < 20; i++ {
		if a.Flip(10).Won != b.Flip(10).Won {
			t.Fatalf("flip %d diverged for identical seeds", i)
		}
	}
}

func TestWorkRewardRange(t *testing.T) {
	d := NewDealer(7)
	for i := 0; i < 1000; i++ {
		reward := d.Work()
		if reward < workMin || reward >= workMax {
			t.Fatalf("reward %d outside [%d, %d)", reward, workMin, workMax)
		}
	}
}

func TestSlotsPayoutTable(t *testing.T) {
	d := NewDealer(3)
	const wager = 10
	for i := 0; i < 1000; i++ {
		out := d.Slots(wager)
		if out.Delta != out.Payout-wager {
			t.Fatalf("delta %d inconsistent with payout %d", out.Delta, out.Payout)
		}
		switch out.Payout {
		case 0, 2 * wager, 10 * wager:
		default:
			t.Fatalf("payout %d not in the table", out.Payout)
		}

		three := out.Reels[0] == out.Reels[1] && out.Reels[1] == out.Reels[2]
		pair := out.Reels[0] == out.Reels[1] || out.Reels[1] == out.Reels[2] || out.Reels[0] == out.Reels[2]
		switch {
		case three && out.Payout != 10*wager:
			t.Fatalf("three of a kind paid %d: %v", out.Payout, out.Reels)
		case !three && pair && out.Payout != 2*wager:
			t.Fatalf("pair paid %d: %v", out.Payout, out.Reels)
		case !pair && out.Payout != 0:
			t.Fatalf("loss paid %d: %v", out.Payout, out.Reels)
		}
	}
}
