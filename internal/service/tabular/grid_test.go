package tabular

import (
	"testing"
)

func TestApplyCellEdit(t *testing.T) {
	tests := []struct {
		name    string
		content string
		row     int
		col     int
		value   string
		want    string
		wantErr bool
	}{
		{
			name:    "edit existing cell",
			content: "a,b\nc,d\n",
			row:     1,
			col:     0,
			value:   "x",
			want:    "a,b\nx,d\n",
		},
		{
			name:    "edit grows columns",
			content: "a,b\n",
			row:     0,
			col:     3,
			value:   "x",
			want:    "a,b,,x\n",
		},
		{
			name:    "edit grows rows",
			content: "a\n",
			row:     2,
			col:     0,
			value:   "x",
			want:    "a\n\"\"\nx\n",
		},
		{
			name:    "empty content",
			content: "",
			row:     0,
			col:     1,
			value:   "x",
			want:    ",x\n",
		},
		{
			name:    "quoted value with comma",
			content: "a,b\n",
			row:     0,
			col:     1,
			value:   "hello, world",
			want:    "a,\"hello, world\"\n",
		},
		{
			name:    "negative coordinates rejected",
			content: "a\n",
			row:     -1,
			col:     0,
			value:   "x",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyCellEdit(tt.content, tt.row, tt.col, tt.value)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyCellEdit() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyCellEdit() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ApplyCellEdit() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRaggedRows(t *testing.T) {
	grid, err := Parse("a,b,c\nd\ne,f\n")
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if len(grid.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(grid.Rows))
	}
	if len(grid.Rows[0]) != 3 || len(grid.Rows[1]) != 1 || len(grid.Rows[2]) != 2 {
		t.Errorf("row widths = %d,%d,%d, want 3,1,2",
			len(grid.Rows[0]), len(grid.Rows[1]), len(grid.Rows[2]))
	}
}

func TestSerializeRoundTrip(t *testing.T) {
	original := "name,notes\nalice,\"likes, commas\"\n"
	grid, err := Parse(original)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	got, err := grid.Serialize()
	if err != nil {
		t.Fatalf("Serialize() unexpected error: %v", err)
	}
	if got != original {
		t.Errorf("round trip = %q, want %q", got, original)
	}
}
