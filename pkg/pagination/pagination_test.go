package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{name: "defaults", in: Params{}, wantPage: 1, wantLimit: DefaultLimit},
		{name: "negative page", in: Params{Page: -3, Limit: 10}, wantPage: 1, wantLimit: 10},
		{name: "limit capped", in: Params{Page: 2, Limit: 9999}, wantPage: 2, wantLimit: MaxLimit},
		{name: "passthrough", in: Params{Page: 4, Limit: 25}, wantPage: 4, wantLimit: 25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("Normalize(%+v) = %+v", tc.in, got)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 3, Limit: 20}).Offset(); got != 40 {
		t.Fatalf("Offset = %d, want 40", got)
	}
	if got := (Params{}).Offset(); got != 0 {
		t.Fatalf("Offset for defaults = %d, want 0", got)
	}
}

func TestBuildMeta(t *testing.T) {
	meta := BuildMeta(Params{Page: 2, Limit: 10}, 45)
	if meta.TotalPages != 5 {
		t.Fatalf("TotalPages = %d, want 5", meta.TotalPages)
	}
	if meta.Total != 45 || meta.Page != 2 || meta.Limit != 10 {
		t.Fatalf("unexpected meta %+v", meta)
	}

	even := BuildMeta(Params{Limit: 10}, 40)
	if even.TotalPages != 4 {
		t.Fatalf("TotalPages = %d, want 4", even.TotalPages)
	}
}
