package util

import (
    "reflect"
    "testing"
)

func TestSplitList(t *testing.T) {
    got := SplitList(" aapl,MSFT  nvda,,aapl\ttsla ")
    want := []string{"AAPL", "MSFT", "NVDA", "TSLA"}
    if !reflect.DeepEqual(got, want) {
        t.Fatalf("SplitList = %v, want %v", got, want)
    }
    if len(SplitList("")) != 0 {
        t.Fatalf("expected empty list")
    }
}

func TestSecretMatches(t *testing.T) {
    if !SecretMatches("", "anything") {
        t.Fatalf("empty secret must disable the check")
    }
    if !SecretMatches("s3cret", "s3cret") {
        t.Fatalf("expected match")
    }
    if SecretMatches("s3cret", "") || SecretMatches("s3cret", "s3cre") {
        t.Fatalf("expected mismatch")
    }
}
