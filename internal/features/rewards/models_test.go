package rewards

import (
	"errors"
	"strings"
	"testing"

	"serotonyl.ru/progress-bot/internal/common"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr error
	}{
		{"к3", Ref{Kind: KindCatalog, ID: 3}, nil},
		{"K3", Ref{Kind: KindCatalog, ID: 3}, nil},
		{"м5", Ref{Kind: KindCustom, ID: 5}, nil},
		{" m12 ", Ref{Kind: KindCustom, ID: 12}, nil},
		{"к0", Ref{}, common.ErrRewardNotFound},
		{"кx", Ref{}, common.ErrRewardNotFound},
		{"з3", Ref{}, common.ErrUnknownRewardKind},
		{"3", Ref{}, common.ErrUnknownRewardKind},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %+v want %+v", got, tt.want)
			}
			if back, _ := ParseRef(got.String()); back != got {
				t.Fatalf("String() %q does not parse back", got.String())
			}
		})
	}
}

func TestRefValidate(t *testing.T) {
	if err := (Ref{Kind: "gift", ID: 1}).Validate(); !errors.Is(err, common.ErrUnknownRewardKind) {
		t.Fatalf("unknown kind: %v", err)
	}
	if err := (Ref{Kind: KindCatalog}).Validate(); !errors.Is(err, common.ErrRewardNotFound) {
		t.Fatalf("zero id: %v", err)
	}
	if err := (Ref{Kind: KindCustom, ID: 1}).Validate(); err != nil {
		t.Fatalf("valid ref: %v", err)
	}
}

func TestCustomInputNormalize(t *testing.T) {
	got, err := CustomInput{Name: "  <b>Пицца</b> ", Cost: 50}.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Пицца" || got.Icon != defaultIcon || got.Category != defaultCateg {
		t.Fatalf("got %+v", got)
	}

	tests := []struct {
		name string
		in   CustomInput
		want error
	}{
		{"empty name", CustomInput{Name: "<i></i>", Cost: 10}, common.ErrValidation},
		{"zero cost", CustomInput{Name: "Кино", Cost: 0}, common.ErrInvalidAmount},
		{"negative cost", CustomInput{Name: "Кино", Cost: -5}, common.ErrInvalidAmount},
		{"too expensive", CustomInput{Name: "Кино", Cost: MaxCost + 1}, common.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.in.Normalize(); !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestParseCustomArgs(t *testing.T) {
	in, err := parseCustomArgs(strings.Fields("80 Пицца с друзьями"))
	if err != nil || in.Cost != 80 || in.Name != "Пицца с друзьями" {
		t.Fatalf("got %+v err %v", in, err)
	}
	if _, err := parseCustomArgs([]string{"80"}); err == nil {
		t.Fatal("name is required")
	}
	if _, err := parseCustomArgs([]string{"дорого", "Кино"}); !errors.Is(err, common.ErrInvalidAmount) {
		t.Fatalf("bad cost: %v", err)
	}
}

func TestFormatRewards(t *testing.T) {
	got := FormatRewards([]*Reward{
		{Kind: KindCatalog, ID: 1, Name: "Десерт", Cost: 40, Icon: "🍰"},
		{Kind: KindCustom, ID: 7, Name: "Пицца", Cost: 80, Icon: "🍕"},
	})
	for _, want := range []string{"к1 🍰 Десерт", "⭐ Мои", "м7 🍕 Пицца", "80 очков"} {
		if !strings.Contains(got, want) {
			t.Fatalf("missing %q in %q", want, got)
		}
	}
	if !strings.Contains(FormatRewards(nil), "!награда+") {
		t.Fatal("empty list must suggest creating a reward")
	}
}
