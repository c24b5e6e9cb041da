package config

import (
	"errors"
	"math"
	"reflect"
	"strconv"
	"testing"
)

func TestParseRangeList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []int
	}{
		{"mixed", []string{"1", "3:5", "10:14:2"}, []int{1, 3, 4, 5, 10, 12, 14}},
		{"empty", nil, []int{}},
		{"duplicates kept", []string{"2", "1:2", "2"}, []int{2, 1, 2, 2}},
		{"step past end", []string{"0:7:3"}, []int{0, 3, 6}},
		{"empty range", []string{"5:3"}, []int{}},
		{"negative step", []string{"5:1:-2"}, []int{5, 3, 1}},
		{"negative values", []string{"-2:0"}, []int{-2, -1, 0}},
		{"spaces", []string{" 4 ", "6: 7"}, []int{4, 6, 7}},
		{"near max int", []string{itoa(math.MaxInt-1) + ":" + itoa(math.MaxInt)}, []int{math.MaxInt - 1, math.MaxInt}},
		{"max int large step", []string{itoa(math.MaxInt-5) + ":" + itoa(math.MaxInt) + ":4"}, []int{math.MaxInt - 5, math.MaxInt - 1}},
		{"near min int", []string{itoa(math.MinInt+1) + ":" + itoa(math.MinInt) + ":-1"}, []int{math.MinInt + 1, math.MinInt}},
		{"full span one step", []string{itoa(math.MinInt) + ":" + itoa(math.MaxInt) + ":" + itoa(math.MaxInt)}, []int{math.MinInt, -1, math.MaxInt - 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRangeList(tt.in)
			if err != nil {
				t.Fatalf("ParseRangeList(%q) error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseRangeList(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func itoa(n int) string { return strconv.Itoa(n) }

func TestParseRangeListErrors(t *testing.T) {
	for _, in := range [][]string{
		{"x"}, {"1:y"}, {"1:5:0"}, {"1:2:3:4"}, {""}, {"1.5"},
		{"0:" + itoa(math.MaxInt)},
		{itoa(math.MaxInt) + ":" + itoa(math.MinInt) + ":-1"},
		{"0:" + itoa(MaxRangeLen)},
	} {
		_, err := ParseRangeList(in)
		if err == nil {
			t.Fatalf("ParseRangeList(%q) expected error", in)
		}
		if !errors.Is(err, ErrRangeSyntax) {
			t.Fatalf("ParseRangeList(%q) err = %v, want ErrRangeSyntax", in, err)
		}
	}
}

func TestStr2Bool(t *testing.T) {
	for _, v := range []string{"yes", "TRUE", "t", "1", "Yes"} {
		if !Str2Bool(v) {
			t.Fatalf("Str2Bool(%q) = false", v)
		}
	}
	for _, v := range []string{"no", "0", "", "y", "false"} {
		if Str2Bool(v) {
			t.Fatalf("Str2Bool(%q) = true", v)
		}
	}
}

func TestParseRangeListAtLimit(t *testing.T) {
	got, err := ParseRangeList([]string{"1:" + itoa(MaxRangeLen)})
	if err != nil {
		t.Fatalf("ParseRangeList() error = %v", err)
	}
	if len(got) != MaxRangeLen || got[len(got)-1] != MaxRangeLen {
		t.Fatalf("ParseRangeList() len = %d, last = %d", len(got), got[len(got)-1])
	}
}
