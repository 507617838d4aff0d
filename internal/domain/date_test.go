package domain

import "testing"

func TestParseDate(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"20240115", false},
		{"20241231", false},
		{"2024011", true},
		{"202401155", true},
		{"2024O115", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && string(d) != tt.input {
				t.Errorf("ParseDate(%q) = %q", tt.input, d)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		date Date
		want string
		ok   bool
	}{
		{"20240115", "01/2024", true},
		{"202401", "01/2024", true},
		{"2024011599", "01/2024", true}, // longer strings read the first 6 chars only
		{"20240", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := tt.date.MonthKey()
		if got != tt.want || ok != tt.ok {
			t.Errorf("Date(%q).MonthKey() = %q, %v, want %q, %v", tt.date, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDisplay(t *testing.T) {
	if got := Date("20240115").Display(); got != "15/01/2024" {
		t.Errorf("Display() = %q, want 15/01/2024", got)
	}
	// Not a full date: rendered as-is rather than mangled.
	if got := Date("202401").Display(); got != "202401" {
		t.Errorf("Display() = %q, want raw value", got)
	}
}

func TestProfileValidate(t *testing.T) {
	valid := ConfigProfile{
		Name:          "BANCO DO BRASIL",
		BankCode:      "1.1.1.01",
		AssetCode:     "1.1.4.01",
		LiabilityCode: "4.1.1.01",
		LayoutType:    LayoutBancoDoBrasil,
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	missing := valid
	missing.AssetCode = ""
	if err := missing.Validate(); err != ErrInvalidInput {
		t.Errorf("Validate() with missing field = %v, want ErrInvalidInput", err)
	}

	unknown := valid
	unknown.LayoutType = "SOMETHING_ELSE"
	if err := unknown.Validate(); err != ErrInvalidInput {
		t.Errorf("Validate() with unknown layout = %v, want ErrInvalidInput", err)
	}
}
