// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []uint16
		width  int
		want   string
	}{
		{
			name:   "empty input",
			values: nil,
			width:  10,
			want:   "",
		},
		{
			name:   "zero width",
			values: []uint16{1, 2, 3},
			width:  0,
			want:   "",
		},
		{
			name:   "all zero renders blank",
			values: []uint16{0, 0, 0, 0},
			width:  4,
			want:   "    ",
		},
		{
			name:   "min and max glyphs",
			values: []uint16{1, 8000},
			width:  2,
			want:   "▁█",
		},
		{
			name:   "uniform values all render full",
			values: []uint16{500, 500, 500},
			width:  3,
			want:   "███",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sparkline(tt.values, tt.width)
			if got != tt.want {
				t.Errorf("sparkline(%v, %d) = %q, want %q", tt.values, tt.width, got, tt.want)
			}
		})
	}
}

func TestSparkline_WidthNeverExceedsRequest(t *testing.T) {
	values := make([]uint16, 721)
	for i := range values {
		values[i] = uint16(i * 10)
	}
	for _, width := range []int{1, 7, 80, 721, 1000} {
		got := sparkline(values, width)
		n := utf8.RuneCountInString(got)
		max := width
		if max > len(values) {
			max = len(values)
		}
		if n != max {
			t.Errorf("width %d: rendered %d glyphs, want %d", width, n, max)
		}
		if strings.ContainsRune(got, utf8.RuneError) {
			t.Errorf("width %d: invalid rune in output", width)
		}
	}
}
