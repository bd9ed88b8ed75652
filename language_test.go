package main

import (
	"context"
	"errors"
	"testing"
)

type fakeClassifier struct {
	code string
	err  error
}

func (f fakeClassifier) Classify(_ context.Context, _ string) (string, error) {
	return f.code, f.err
}

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, text, from, to string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

func TestDetectDegradesToUnknown(t *testing.T) {
	ctx := context.Background()

	svc := NewLanguageService(fakeClassifier{code: "FR"}, nil)
	if got := svc.Detect(ctx, "bonjour"); got != "fr" {
		t.Fatalf("expected lowercased code, got %q", got)
	}

	svc = NewLanguageService(fakeClassifier{err: errors.New("model offline")}, nil)
	if got := svc.Detect(ctx, "bonjour"); got != languageUnknown {
		t.Fatalf("classifier failure should degrade to unknown, got %q", got)
	}

	svc = NewLanguageService(nil, nil)
	if got := svc.Detect(ctx, "bonjour"); got != languageUnknown {
		t.Fatalf("disabled service should return unknown, got %q", got)
	}

	svc = NewLanguageService(fakeClassifier{code: "en"}, nil)
	if got := svc.Detect(ctx, "   "); got != languageUnknown {
		t.Fatalf("blank text should return unknown, got %q", got)
	}
}

func TestTranslateIdentityRules(t *testing.T) {
	ctx := context.Background()
	translator := &fakeTranslator{out: "translated"}
	svc := NewLanguageService(nil, translator)

	if got := svc.Translate(ctx, "hello", "en", "en"); got != "hello" || translator.calls != 0 {
		t.Fatalf("same codes should be identity, got %q calls=%d", got, translator.calls)
	}
	if got := svc.Translate(ctx, "hello", languageUnknown, "fr"); got != "hello" || translator.calls != 0 {
		t.Fatalf("unknown source should be identity, got %q calls=%d", got, translator.calls)
	}
	if got := svc.Translate(ctx, "hello", "en", "fr"); got != "translated" || translator.calls != 1 {
		t.Fatalf("expected delegated translation, got %q calls=%d", got, translator.calls)
	}
}

func TestTranslateFailureReturnsOriginal(t *testing.T) {
	ctx := context.Background()
	translator := &fakeTranslator{err: errors.New("quota exceeded")}
	svc := NewLanguageService(nil, translator)

	if got := svc.Translate(ctx, "hello", "en", "fr"); got != "hello" {
		t.Fatalf("translator failure should return the original text, got %q", got)
	}
}

func TestTranslateIfNeeded(t *testing.T) {
	ctx := context.Background()
	translator := &fakeTranslator{out: "bonjour"}
	svc := NewLanguageService(nil, translator)

	cases := []struct {
		text, from, to string
		want           string
		wantCalls      int
	}{
		{"", "en", "fr", "", 0},
		{"hello", "", "fr", "hello", 0},
		{"hello", "en", "", "hello", 0},
		{"hello", "en", languageUnknown, "hello", 0},
		{"hello", "en", "en", "hello", 0},
		{"hello", "en", "fr", "bonjour", 1},
	}
	for _, tc := range cases {
		translator.calls = 0
		got := svc.TranslateIfNeeded(ctx, tc.text, tc.from, tc.to)
		if got != tc.want || translator.calls != tc.wantCalls {
			t.Fatalf("TranslateIfNeeded(%q, %q, %q) = %q calls=%d, want %q calls=%d",
				tc.text, tc.from, tc.to, got, translator.calls, tc.want, tc.wantCalls)
		}
	}
}

func TestNewLanguageServiceFromConfigDisabledWithoutKey(t *testing.T) {
	svc := NewLanguageServiceFromConfig(Config{LLMProvider: "anthropic"})
	if got := svc.Detect(context.Background(), "bonjour"); got != languageUnknown {
		t.Fatalf("keyless service should be disabled, got %q", got)
	}
	if got := svc.Translate(context.Background(), "hello", "en", "fr"); got != "hello" {
		t.Fatalf("keyless service should not translate, got %q", got)
	}
}
