package quote

import (
    "strings"
    "testing"
)

func TestNormalize(t *testing.T) {
    cases := []struct{ in, want string }{
        {"BNS,", "BNS"},
        {"ncb", "NCB"},
        {"  scij.  ", "SCIJ"},
        {"138SL", "138SL"},
        {"JMMBGL7.25;", "JMMBGL7.25"},
        {"10.00", "10.00"},
        {"...", ""},
    }
    for _, c := range cases {
        if got := Normalize(c.in); got != c.want {
            t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
        }
    }
}

func TestParseWatchlist_SkipsAndDedupes(t *testing.T) {
    in := strings.NewReader("# core holdings\nNCB\n\nbns,\nBNS\n  scij\n#138SL\n")
    syms, err := ParseWatchlist(in)
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    want := []string{"BNS", "NCB", "SCIJ"}
    if len(syms) != len(want) {
        t.Fatalf("want %v, got %v", want, syms)
    }
    for i := range want {
        if syms[i] != want[i] { t.Fatalf("want %v, got %v", want, syms) }
    }
}

func TestReadWatchlist_MissingFileIsEmpty(t *testing.T) {
    syms, err := ReadWatchlist("no-such-watchlist.txt")
    if err != nil { t.Fatalf("unexpected error: %v", err) }
    if len(syms) != 0 { t.Fatalf("want empty, got %v", syms) }
}
