package members

import "testing"

func TestMemberName(t *testing.T) {
	tests := []struct {
		name string
		m    Member
		want string
	}{
		{"display name wins", Member{UserID: 1, Username: "ann", DisplayName: "Анна"}, "Анна"},
		{"username fallback", Member{UserID: 1, Username: "ann"}, "@ann"},
		{"id fallback", Member{UserID: 42}, "id42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Name(); got != tt.want {
				t.Fatalf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestDisplayNameFrom(t *testing.T) {
	if got := DisplayNameFrom(Profile{FirstName: "Иван", LastName: "Петров"}); got != "Иван Петров" {
		t.Fatalf("got %q", got)
	}
	if got := DisplayNameFrom(Profile{LastName: "Петров"}); got != "Петров" {
		t.Fatalf("got %q", got)
	}
	if got := trimAt("@ann"); got != "ann" {
		t.Fatalf("trimAt: got %q", got)
	}
}
