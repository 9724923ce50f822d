package intent

import "testing"

func TestTypeValid(t *testing.T) {
	for _, typ := range Types {
		if !typ.Valid() {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	if Type("weather_forecast").Valid() {
		t.Error("expected unknown intent to be invalid")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		in    Intent
		check func(t *testing.T, got Intent)
	}{
		{
			name: "unknown primary becomes general",
			in:   Intent{PrimaryIntent: "shopping", Confidence: 0.9},
			check: func(t *testing.T, got Intent) {
				if got.PrimaryIntent != GeneralQuery {
					t.Errorf("expected general_query, got %q", got.PrimaryIntent)
				}
			},
		},
		{
			name: "confidence clamped high",
			in:   Intent{PrimaryIntent: Advertising, Confidence: 1.7},
			check: func(t *testing.T, got Intent) {
				if got.Confidence != 1 {
					t.Errorf("expected 1, got %f", got.Confidence)
				}
			},
		},
		{
			name: "confidence clamped low",
			in:   Intent{PrimaryIntent: Advertising, Confidence: -0.2},
			check: func(t *testing.T, got Intent) {
				if got.Confidence != 0 {
					t.Errorf("expected 0, got %f", got.Confidence)
				}
			},
		},
		{
			name: "unknown secondary dropped",
			in:   Intent{PrimaryIntent: ContentCreation, SecondaryIntent: "nonsense", Confidence: 0.5},
			check: func(t *testing.T, got Intent) {
				if got.SecondaryIntent != "" {
					t.Errorf("expected empty secondary, got %q", got.SecondaryIntent)
				}
			},
		},
		{
			name: "nil entities initialised",
			in:   Intent{PrimaryIntent: ContentCreation},
			check: func(t *testing.T, got Intent) {
				if got.Entities == nil {
					t.Error("expected non-nil entities")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, tt.in.Normalize())
		})
	}
}

func TestHasSecondary(t *testing.T) {
	if (Intent{PrimaryIntent: Advertising, SecondaryIntent: Advertising}).HasSecondary() {
		t.Error("secondary equal to primary should not count")
	}
	if !(Intent{PrimaryIntent: Advertising, SecondaryIntent: ContentCreation}).HasSecondary() {
		t.Error("expected secondary to be present")
	}
}
