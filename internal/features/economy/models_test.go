package economy

import "testing"

func TestBalanceWithDelta(t *testing.T) {
	tests := []struct {
		name        string
		start       Balance
		delta       int64
		wantBalance int64
		wantEarned  int64
	}{
		{"new positive log", Balance{Balance: 0, TotalEarned: 0}, 55, 55, 55},
		{"edit down keeps lifetime", Balance{Balance: 50, TotalEarned: 50}, -30, 20, 50},
		{"edit up raises lifetime", Balance{Balance: 20, TotalEarned: 50}, 10, 30, 60},
		{"negative day goes below zero", Balance{Balance: 5, TotalEarned: 5}, -30, -25, 5},
		{"resubmit same score", Balance{Balance: 55, TotalEarned: 55}, 0, 55, 55},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.start.WithDelta(tt.delta)
			if got.Balance != tt.wantBalance || got.TotalEarned != tt.wantEarned {
				t.Fatalf("got balance=%d earned=%d, want %d/%d",
					got.Balance, got.TotalEarned, tt.wantBalance, tt.wantEarned)
			}
		})
	}
}

func TestTransactionSigned(t *testing.T) {
	user := int64(7)
	credit := &Transaction{ToUserID: &user, Amount: 40}
	debit := &Transaction{FromUserID: &user, Amount: 15}
	if credit.Signed(user) != 40 {
		t.Fatalf("credit: got %d", credit.Signed(user))
	}
	if debit.Signed(user) != -15 {
		t.Fatalf("debit: got %d", debit.Signed(user))
	}
}
