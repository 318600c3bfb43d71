package g2b

import (
	"encoding/json"
	"testing"
)

func decodeEnvelope(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		t.Fatalf("Failed to decode test envelope: %v", err)
	}
	return envelope
}

func TestItems(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{
			name: "items as list",
			raw:  `{"response":{"body":{"items":[{"a":"1"},{"a":"2"}]}}}`,
			want: 2,
		},
		{
			name: "items wrapping single item object",
			raw:  `{"response":{"body":{"items":{"item":{"a":"1"}}}}}`,
			want: 1,
		},
		{
			name: "items wrapping item list",
			raw:  `{"response":{"body":{"items":{"item":[{"a":"1"},{"a":"2"},{"a":"3"}]}}}}`,
			want: 3,
		},
		{
			name: "items absent",
			raw:  `{"response":{"body":{}}}`,
			want: 0,
		},
		{
			name: "items null",
			raw:  `{"response":{"body":{"items":null}}}`,
			want: 0,
		},
		{
			name: "items object without item key is the payload",
			raw:  `{"response":{"body":{"items":{"a":"1"}}}}`,
			want: 1,
		},
		{
			name: "body absent",
			raw:  `{"response":{}}`,
			want: 0,
		},
		{
			name: "empty envelope",
			raw:  `{}`,
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := Items(decodeEnvelope(t, tt.raw))
			if len(items) != tt.want {
				t.Errorf("Items() returned %d items, want %d", len(items), tt.want)
			}
		})
	}
}

func TestItemsNilEnvelope(t *testing.T) {
	if items := Items(nil); items != nil {
		t.Errorf("Expected nil for nil envelope, got %v", items)
	}
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  float64
		ok    bool
	}{
		{name: "json number", value: float64(98.765), want: 98.765, ok: true},
		{name: "numeric string", value: "1234567", want: 1234567, ok: true},
		{name: "string with separators", value: "1,234,567", want: 1234567, ok: true},
		{name: "padded string", value: " 87.745 ", want: 87.745, ok: true},
		{name: "empty string", value: "", ok: false},
		{name: "non-numeric string", value: "n/a", ok: false},
		{name: "nil", value: nil, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := toFloat(tt.value)
			if ok != tt.ok {
				t.Fatalf("toFloat ok = %v, want %v", ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("toFloat = %v, want %v", got, tt.want)
			}
		})
	}
}
