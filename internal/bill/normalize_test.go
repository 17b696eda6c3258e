package bill

import (
	"testing"

	"github.com/hpungsan/capitol/internal/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple lowercase",
			input: "House",
			want:  "house",
		},
		{
			name:  "trim whitespace",
			input: "  senate  ",
			want:  "senate",
		},
		{
			name:  "collapse internal whitespace",
			input: "House   of\tRepresentatives",
			want:  "house of representatives",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"HR", "hr"},
		{"H.R.", "hr"},
		{" hjres ", "hjres"},
		{"S. Con. Res.", "sconres"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeType(tt.input); got != tt.want {
			t.Errorf("NormalizeType(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestNewRef(t *testing.T) {
	tests := []struct {
		name     string
		congress int
		billType string
		number   string
		want     Ref
		wantErr  bool
	}{
		{
			name:     "valid uppercase type",
			congress: 119,
			billType: "HR",
			number:   "3076",
			want:     Ref{Congress: 119, Type: "hr", Number: "3076"},
		},
		{
			name:     "number with spaces",
			congress: 118,
			billType: "s",
			number:   " 5 ",
			want:     Ref{Congress: 118, Type: "s", Number: "5"},
		},
		{name: "zero congress", congress: 0, billType: "hr", number: "1", wantErr: true},
		{name: "empty type", congress: 119, billType: "", number: "1", wantErr: true},
		{name: "unknown type", congress: 119, billType: "bill", number: "1", wantErr: true},
		{name: "empty number", congress: 119, billType: "hr", number: "", wantErr: true},
		{name: "non-numeric number", congress: 119, billType: "hr", number: "HR1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewRef(tt.congress, tt.billType, tt.number)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidRequest) {
					t.Fatalf("NewRef() error = %v, want INVALID_REQUEST", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRef() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("NewRef() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("119/HR/3076")
	if err != nil {
		t.Fatalf("ParseRef() error = %v", err)
	}
	if ref.String() != "119/hr/3076" {
		t.Errorf("String() = %q, want %q", ref.String(), "119/hr/3076")
	}

	ref, err = ParseRef("118 s 42")
	if err != nil {
		t.Fatalf("ParseRef() error = %v", err)
	}
	if ref != (Ref{Congress: 118, Type: "s", Number: "42"}) {
		t.Errorf("ParseRef() = %+v", ref)
	}

	for _, bad := range []string{"", "119/hr", "x/hr/1", "119/hr/1/2"} {
		if _, err := ParseRef(bad); err == nil {
			t.Errorf("ParseRef(%q) expected error", bad)
		}
	}
}

func TestParseChamber(t *testing.T) {
	tests := []struct {
		input  string
		want   Chamber
		wantOK bool
	}{
		{"House", ChamberHouse, true},
		{"House of Representatives", ChamberHouse, true},
		{"  house of  representatives ", ChamberHouse, true},
		{"Senate", ChamberSenate, true},
		{"S", ChamberSenate, true},
		{"Joint", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseChamber(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseChamber(%q) = (%q, %v), want (%q, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestChamberShort(t *testing.T) {
	if ChamberHouse.Short() != "House" {
		t.Errorf("ChamberHouse.Short() = %q", ChamberHouse.Short())
	}
	if ChamberSenate.Short() != "Senate" {
		t.Errorf("ChamberSenate.Short() = %q", ChamberSenate.Short())
	}
}

func TestBillRef(t *testing.T) {
	b := &Bill{Number: "3076", Type: "HR", Congress: 119}
	if got := b.Ref(); got != (Ref{Congress: 119, Type: "hr", Number: "3076"}) {
		t.Errorf("Ref() = %+v", got)
	}
}
