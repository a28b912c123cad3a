package pdf

import (
	"reflect"
	"strings"
	"testing"
)

func TestInvokedXObjects(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "empty", content: "", want: nil},
		{name: "single", content: "q 100 0 0 100 0 0 cm /Im0 Do Q", want: []string{"Im0"}},
		{name: "first use order", content: "/Im2 Do /Im0 Do /Im2 Do /Im1 Do", want: []string{"Im2", "Im0", "Im1"}},
		{name: "no whitespace", content: "q/Im0 Do Q", want: []string{"Im0"}},
		{name: "comment", content: "% /Hidden Do\n/Im0 Do", want: []string{"Im0"}},
		{name: "literal string", content: "BT (/Im9 Do (nested\\) ) ) Tj ET /Im0 Do", want: []string{"Im0"}},
		{name: "hex string", content: "<2F496D39> Tj /Im0 Do", want: []string{"Im0"}},
		{name: "name not followed by Do", content: "/GS0 gs /F1 12 Tf /Im0 Do", want: []string{"Im0"}},
		{name: "escaped name", content: "/Im#20A Do", want: []string{"Im A"}},
		{name: "inline image", content: "BI /W 2 /H 1 /BPC 8 /CS /G ID \x00/X Do\xff EI /Im0 Do", want: []string{"Im0"}},
		{name: "dictionary operand", content: "/Span <</MCID 0>> BDC /Im0 Do EMC", want: []string{"Im0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := invokedXObjects([]byte(tt.content)); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("invokedXObjects(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestRemoveXObjectCalls(t *testing.T) {
	content := "q 10 0 0 10 0 0 cm /Logo Do Q\nq 20 0 0 20 0 0 cm /Im0 Do Q\nq /Logo Do Q"

	out, n := removeXObjectCalls([]byte(content), "Logo")
	if n != 2 {
		t.Fatalf("removed %d calls, want 2", n)
	}
	if strings.Contains(string(out), "Logo") {
		t.Errorf("Logo still present in %q", out)
	}
	if got := invokedXObjects(out); !reflect.DeepEqual(got, []string{"Im0"}) {
		t.Errorf("remaining invocations = %v", got)
	}
	// Graphics state operators around the call survive
	if strings.Count(string(out), "q") != 3 || strings.Count(string(out), "Q") != 3 {
		t.Errorf("graphics state operators changed: %q", out)
	}
}

func TestRemoveXObjectCallsMissing(t *testing.T) {
	content := []byte("/Im0 Do")
	out, n := removeXObjectCalls(content, "Im1")
	if n != 0 || string(out) != string(content) {
		t.Errorf("got (%q, %d), want content unchanged", out, n)
	}
}
