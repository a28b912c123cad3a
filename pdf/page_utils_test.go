package pdf

import (
	"reflect"
	"testing"
)

func TestParsePageSpecifier(t *testing.T) {
	tests := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{in: "1", want: []int{1}},
		{in: "1,3", want: []int{1, 3}},
		{in: "1-5", want: []int{1, 2, 3, 4, 5}},
		{in: " 7, 1,3-5 ,3", want: []int{1, 3, 4, 5, 7}},
		{in: "", wantErr: true},
		{in: "  ", wantErr: true},
		{in: "a", wantErr: true},
		{in: "5-1", wantErr: true},
		{in: "1-2-3", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParsePageSpecifier(tt.in)
		if tt.wantErr {
			if !IsInputError(err) {
				t.Errorf("ParsePageSpecifier(%q) error = %v, want InputError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePageSpecifier(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParsePageSpecifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValidatePageNumbers(t *testing.T) {
	if err := ValidatePageNumbers([]int{1, 3}, 3); err != nil {
		t.Errorf("valid pages rejected: %v", err)
	}
	if err := ValidatePageNumbers([]int{0}, 3); !IsInputError(err) {
		t.Errorf("page 0: got %v", err)
	}
	if err := ValidatePageNumbers([]int{4}, 3); !IsInputError(err) {
		t.Errorf("page 4 of 3: got %v", err)
	}
}
