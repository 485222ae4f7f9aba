package report

import (
	"reflect"
	"testing"
	"unicode/utf8"
)

func TestBuildCSVHeaderUnion(t *testing.T) {
	first := NewRecord()
	first.Set("a", "1")
	first.Set("b", "2")

	second := NewRecord()
	second.Set("b", "3")

	got := string(BuildCSV([]*Record{first, second}))
	want := "\"a\",\"b\"\n\"1\",\"2\"\n\"\",\"3\""
	if got != want {
		t.Errorf("BuildCSV = %q, want %q", got, want)
	}
}

func TestBuildCSVFirstSeenOrder(t *testing.T) {
	first := NewRecord()
	first.Set("zip", "62704")

	second := NewRecord()
	second.Set("name", "Ada")
	second.Set("zip", "60601")

	got := string(BuildCSV([]*Record{first, second}))
	want := "\"zip\",\"name\"\n\"62704\",\"\"\n\"60601\",\"Ada\""
	if got != want {
		t.Errorf("BuildCSV = %q, want %q", got, want)
	}
}

func TestBuildCSVEscapesQuotes(t *testing.T) {
	rec := NewRecord()
	rec.Set("name", `Ada "Dot" Byron`)

	got := string(BuildCSV([]*Record{rec}))
	want := "\"name\"\n\"Ada \"\"Dot\"\" Byron\""
	if got != want {
		t.Errorf("BuildCSV = %q, want %q", got, want)
	}
}

func TestBuildCSVUTF8(t *testing.T) {
	rec := NewRecord()
	rec.Set("name", "José Ñandú")

	out := BuildCSV([]*Record{rec})
	if !utf8.Valid(out) {
		t.Error("BuildCSV output is not valid UTF-8")
	}
}

func TestBuildCSVEmpty(t *testing.T) {
	if got := BuildCSV(nil); len(got) != 0 {
		t.Errorf("BuildCSV(nil) = %q, want empty", got)
	}
}

func TestRecordSetKeepsPosition(t *testing.T) {
	rec := NewRecord()
	rec.Set("b", "1")
	rec.Set("a", "2")
	rec.Set("b", "3")

	if got := rec.Get("b"); got != "3" {
		t.Errorf("Get(b) = %q, want %q", got, "3")
	}
	if got, want := rec.Keys(), []string{"b", "a"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Keys = %v, want %v", got, want)
	}
}
