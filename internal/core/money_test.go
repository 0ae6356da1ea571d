package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "dot separator", input: "12.34", want: 1234},
		{name: "comma separator", input: "12,34", want: 1234},
		{name: "integer only", input: "45", want: 4500},
		{name: "one decimal digit", input: "7.5", want: 750},
		{name: "third digit rounds down", input: "12.344", want: 1234},
		{name: "third digit rounds up", input: "12.346", want: 1235},
		{name: "leading dot", input: ".99", want: 99},
		{name: "whitespace trimmed", input: "  3,10 ", want: 310},
		{name: "empty", input: "", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "explicit sign rejected", input: "-12.34", wantErr: true},
		{name: "plus sign rejected", input: "+12.34", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "letters", input: "12a.34", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDecimalToCents(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatBRL(t *testing.T) {
	tests := []struct {
		name  string
		cents int64
		want  string
	}{
		{name: "whole value", cents: 120000, want: "R$ 1200,00"},
		{name: "with cents", cents: 1234, want: "R$ 12,34"},
		{name: "single cent pads", cents: 1205, want: "R$ 12,05"},
		{name: "negative", cents: -950, want: "-R$ 9,50"},
		{name: "zero", cents: 0, want: "R$ 0,00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatBRL(tt.cents); got != tt.want {
				t.Errorf("FormatBRL(%d) = %q, want %q", tt.cents, got, tt.want)
			}
		})
	}
}

func TestMoneyReais(t *testing.T) {
	m := Money{Cents: 1250}
	if got := m.Reais(); got != 12.5 {
		t.Errorf("Reais() = %v, want 12.5", got)
	}
}
