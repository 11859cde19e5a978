package palette

import (
	"errors"
	"slices"
	"testing"

	"hypercastle/internal/render"
)

var (
	testOriginal = []rune{1, 2, 3}
	testAnchors  = []int{100, 200, 300, 400}
)

func run(anchor int) []rune {
	out := make([]rune, 0, RunLength)
	for cp := anchor; cp < anchor+RunLength; cp++ {
		out = append(out, rune(cp))
	}
	return out
}

func concat(parts ...[]rune) []rune {
	var out []rune
	for _, part := range parts {
		out = append(out, part...)
	}
	return out
}

func TestBuild_Thresholds(t *testing.T) {
	reversed := []rune{3, 2, 1}
	allRuns := concat(run(100), run(200), run(300), run(400))

	tests := []struct {
		name      string
		params    render.Params
		wantChars []rune
		mainIsSet bool
	}{
		{name: "4999 no runs", params: render.Params{Seed: 4999}, wantChars: testOriginal},
		{name: "5000 no runs", params: render.Params{Seed: 5000}, wantChars: testOriginal},
		{name: "5001 one run at seed mod 3", params: render.Params{Seed: 5001}, wantChars: concat(testOriginal, run(100))},
		{name: "8999 one run", params: render.Params{Seed: 8999}, wantChars: concat(testOriginal, run(300))},
		{name: "9000 one run", params: render.Params{Seed: 9000}, wantChars: concat(testOriginal, run(100))},
		{name: "9001 one run", params: render.Params{Seed: 9001}, wantChars: concat(testOriginal, run(200))},
		{name: "9949 reversed main", params: render.Params{Seed: 9949}, wantChars: concat(testOriginal, run(200))},
		{name: "9950 reversed main", params: render.Params{Seed: 9950}, wantChars: concat(testOriginal, run(300))},
		{name: "9951 main is char set", params: render.Params{Seed: 9951}, wantChars: concat(testOriginal, run(100)), mainIsSet: true},
		{name: "9969 one run", params: render.Params{Seed: 9969}, wantChars: concat(testOriginal, run(100)), mainIsSet: true},
		{name: "9970 one run", params: render.Params{Seed: 9970}, wantChars: concat(testOriginal, run(200)), mainIsSet: true},
		{name: "9971 every anchor", params: render.Params{Seed: 9971}, wantChars: concat(testOriginal, allRuns), mainIsSet: true},
		{name: "origin 8999 repeats one run", params: render.Params{Mode: 3, Seed: 8999}, wantChars: concat(testOriginal, run(400), run(400), run(400), run(400))},
		{name: "origin 9000 repeats one run", params: render.Params{Mode: 4, Seed: 9000}, wantChars: concat(testOriginal, run(100), run(100), run(100), run(100))},
		{name: "origin 9001 every anchor", params: render.Params{Mode: 3, Seed: 9001}, wantChars: concat(testOriginal, allRuns)},
		{name: "origin 9951 every anchor", params: render.Params{Mode: 4, Seed: 9951}, wantChars: concat(testOriginal, allRuns), mainIsSet: true},
		{name: "daydream is not origin", params: render.Params{Mode: 1, Seed: 100}, wantChars: testOriginal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := Build(tt.params, testOriginal, testAnchors)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !slices.Equal(set.Chars, tt.wantChars) {
				t.Fatalf("expected chars %v, got %v", tt.wantChars, set.Chars)
			}
			if !slices.Equal(set.Chars[:len(testOriginal)], testOriginal) {
				t.Fatalf("expected original prefix, got %v", set.Chars)
			}
			wantMain := reversed
			if tt.mainIsSet {
				wantMain = tt.wantChars
			}
			if !slices.Equal(set.Main, wantMain) {
				t.Fatalf("expected main %v, got %v", wantMain, set.Main)
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	t.Run("origin needs anchors below 9001", func(t *testing.T) {
		_, err := Build(render.Params{Mode: 3, Seed: 10}, testOriginal, nil)
		if !errors.Is(err, ErrEmptyAnchorList) {
			t.Fatalf("expected ErrEmptyAnchorList, got %v", err)
		}
	})

	t.Run("origin above 9000 tolerates no anchors", func(t *testing.T) {
		set, err := Build(render.Params{Mode: 3, Seed: 9500}, testOriginal, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !slices.Equal(set.Chars, testOriginal) {
			t.Fatalf("expected original chars, got %v", set.Chars)
		}
	})

	t.Run("mid seeds need anchors", func(t *testing.T) {
		_, err := Build(render.Params{Seed: 6000}, testOriginal, nil)
		if !errors.Is(err, ErrEmptyAnchorList) {
			t.Fatalf("expected ErrEmptyAnchorList, got %v", err)
		}
	})

	t.Run("seed mod 3 past the list", func(t *testing.T) {
		_, err := Build(render.Params{Seed: 5003}, testOriginal, []int{100, 200})
		if !errors.Is(err, ErrAnchorOutOfRange) {
			t.Fatalf("expected ErrAnchorOutOfRange, got %v", err)
		}
	})

	t.Run("low seeds ignore anchors", func(t *testing.T) {
		if _, err := Build(render.Params{Seed: 42}, testOriginal, nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("empty original", func(t *testing.T) {
		_, err := Build(render.Params{Seed: 42}, nil, testAnchors)
		if !errors.Is(err, ErrEmptyPalette) {
			t.Fatalf("expected ErrEmptyPalette, got %v", err)
		}
	})

	t.Run("empty original with appended runs still has empty main", func(t *testing.T) {
		_, err := Build(render.Params{Seed: 6000}, nil, testAnchors)
		if !errors.Is(err, ErrEmptyPalette) {
			t.Fatalf("expected ErrEmptyPalette, got %v", err)
		}
	})
}

func TestBuild_MainDoesNotAliasChars(t *testing.T) {
	set, err := Build(render.Params{Seed: 9999}, testOriginal, testAnchors)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	set.Main[0] = 'x'
	if set.Chars[0] == 'x' {
		t.Fatalf("expected main and chars to be independent")
	}
}

func TestOriginalChars(t *testing.T) {
	classes := []rune{'b', 'a', 'b', 'c'}
	glyphs := []rune{'1', '2', '3', '4'}

	got := OriginalChars([]rune{'a', 'z', 'b', 'c'}, classes, glyphs)
	want := []rune{'2', '1', '4'}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %q, got %q", string(want), string(got))
	}
}
