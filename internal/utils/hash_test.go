package utils

import "testing"

func TestCalculateDataMD5(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"empty", []byte{}, "d41d8cd98f00b204e9800998ecf8427e"},
		{"hello", []byte("hello"), "5d41402abc4b2a76b9719d911017c592"},
		{"nil", nil, "d41d8cd98f00b204e9800998ecf8427e"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CalculateDataMD5(tt.data); got != tt.want {
				t.Errorf("CalculateDataMD5 = %q, want %q", got, tt.want)
			}
		})
	}
}
