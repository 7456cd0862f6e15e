package ids

import (
	"reflect"
	"testing"
)

func TestCleanID(t *testing.T) {
	cases := map[string]string{
		"  Alice  ":        "Alice",
		"Box   1":          "Box 1",
		"Box\t1\n2":        "Box 1 2",
		"":                 "",
		"Plain":            "Plain",
		"  multi   space ": "multi space",
	}
	for in, want := range cases {
		if got := CleanID(in); got != want {
			t.Errorf("CleanID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFilenameSafe(t *testing.T) {
	got := FilenameSafe("P1 / Box #2 (east)")
	want := "P1Box2east"
	if got != want {
		t.Fatalf("FilenameSafe = %q, want %q", got, want)
	}
	if got := FilenameSafe("+write-in_1"); got != "+write-in_1" {
		t.Fatalf("FilenameSafe should keep -, _, + : got %q", got)
	}
}

func TestSelidClassifiers(t *testing.T) {
	if !IsWriteIn("+Smith") {
		t.Fatal("expected write-in")
	}
	if IsWriteIn("Alice") {
		t.Fatal("did not expect write-in")
	}
	if !IsErrorSelid(SelidNoSuchContest) {
		t.Fatal("expected error selid")
	}
	if IsErrorSelid("Alice") {
		t.Fatal("did not expect error selid")
	}
}

func TestComputeTally(t *testing.T) {
	got := ComputeTally([]string{"a", "b", "a", "c", "a"})
	want := map[string]int{"a": 3, "b": 1, "c": 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ComputeTally = %v, want %v", got, want)
	}
}

func TestComputeTally2(t *testing.T) {
	pairs := []Pair[string]{
		{Reported: "Alice", Actual: "Alice"},
		{Reported: "Alice", Actual: "Bob"},
		{Reported: "Alice", Actual: "Alice"},
		{Reported: "Bob", Actual: "Bob"},
	}
	got := ComputeTally2(pairs)
	want := map[string]map[string]int{
		"Alice": {"Alice": 2, "Bob": 1},
		"Bob":   {"Bob": 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ComputeTally2 = %v, want %v", got, want)
	}
}
