// util/util_test.go
// Copyright(c) 2025-2026 scopesim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"slices"
	"strings"
	"testing"
)

func TestSelect(t *testing.T) {
	if got := Select(true, "a", "b"); got != "a" {
		t.Errorf("Select(true) = %q, want a", got)
	}
	if got := Select(false, 1, 2); got != 2 {
		t.Errorf("Select(false) = %d, want 2", got)
	}
}

func TestSortedMapKeys(t *testing.T) {
	m := map[string]int{"DAL123": 1, "AAL5": 2, "UAL90": 3}
	got := SortedMapKeys(m)
	want := []string{"AAL5", "DAL123", "UAL90"}
	if !slices.Equal(got, want) {
		t.Errorf("SortedMapKeys = %v, want %v", got, want)
	}
}

func TestMapFilterSlice(t *testing.T) {
	s := []int{1, 2, 3, 4, 5}

	doubled := MapSlice(s, func(v int) int { return 2 * v })
	if !slices.Equal(doubled, []int{2, 4, 6, 8, 10}) {
		t.Errorf("MapSlice = %v", doubled)
	}

	even := FilterSlice(s, func(v int) bool { return v%2 == 0 })
	if !slices.Equal(even, []int{2, 4}) {
		t.Errorf("FilterSlice = %v", even)
	}

	sum := ReduceSlice(s, func(v int, r int) int { return v + r }, 0)
	if sum != 15 {
		t.Errorf("ReduceSlice sum = %d, want 15", sum)
	}
}

func TestErrorLogger(t *testing.T) {
	var e ErrorLogger

	if e.HaveErrors() {
		t.Errorf("fresh ErrorLogger reports errors")
	}

	e.Push("scenario")
	e.Push("sectors")
	e.ErrorString("sector %q has no boundary", "SAT_APP")
	e.Pop()
	e.ErrorString("missing airport")
	e.Pop()

	if !e.HaveErrors() {
		t.Errorf("expected errors to be recorded")
	}

	s := e.String()
	if !strings.Contains(s, "scenario / sectors: sector \"SAT_APP\" has no boundary") {
		t.Errorf("missing hierarchical context in %q", s)
	}
	if !strings.Contains(s, "scenario: missing airport") {
		t.Errorf("missing popped-context error in %q", s)
	}
}

func TestFindDuplicateJSONKeys(t *testing.T) {
	cases := []struct {
		name string
		json string
		want []DuplicateJSONKey
	}{
		{
			name: "NoDuplicates",
			json: `{"a": 1, "b": {"c": 2}}`,
			want: nil,
		},
		{
			name: "TopLevel",
			json: `{"a": 1, "a": 2}`,
			want: []DuplicateJSONKey{{Path: "", Key: "a"}},
		},
		{
			name: "Nested",
			json: `{"sectors": {"north": {"radius": 1, "radius": 2}}}`,
			want: []DuplicateJSONKey{{Path: "sectors.north", Key: "radius"}},
		},
		{
			name: "InsideArray",
			json: `{"routes": [{"fix": "A", "fix": "B"}]}`,
			want: []DuplicateJSONKey{{Path: "routes", Key: "fix"}},
		},
		{
			name: "SameKeyDifferentObjects",
			json: `{"a": {"x": 1}, "b": {"x": 2}}`,
			want: nil,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := FindDuplicateJSONKeys([]byte(c.json))
			if len(got) != len(c.want) {
				t.Fatalf("got %v, want %v", got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("duplicate %d: got %+v, want %+v", i, got[i], c.want[i])
				}
			}
		})
	}
}
