package icefile

import "testing"

func TestColumnPathString(t *testing.T) {
	tests := []struct {
		path columnPath
		want string
	}{
		{nil, ""},
		{columnPath{"id"}, "id"},
		{columnPath{"col", "a"}, "col.a"},
	}

	for _, test := range tests {
		if got := test.path.String(); got != test.want {
			t.Errorf("%q: want = %q, got = %q", []string(test.path), test.want, got)
		}
	}
}

// Sibling paths derived from the same parent must not share backing storage,
// even when the parent has spare capacity.
func TestColumnPathSiblingsDoNotAlias(t *testing.T) {
	col := columnPath(make([]string, 0, 8)).append("col")
	a := col.append("a")
	b := col.append("b")

	if got := a.String(); got != "col.a" {
		t.Errorf("first sibling corrupted: %q", got)
	}
	if got := b.String(); got != "col.b" {
		t.Errorf("second sibling corrupted: %q", got)
	}
}
