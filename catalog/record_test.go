package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestRecordValidate(t *testing.T) {
	tests := []struct {
		name    string
		record  Record
		wantErr bool
	}{
		{name: "valid", record: Record{ID: 1, Title: "Heat", Soup: "Heat Heat Crime"}},
		{name: "valid with rating", record: Record{ID: 2, Title: "Up", Soup: "Up Up Animation", Rating: ptr(8.2)}},
		{name: "zero id", record: Record{Title: "Heat", Soup: "s"}, wantErr: true},
		{name: "negative id", record: Record{ID: -3, Title: "Heat", Soup: "s"}, wantErr: true},
		{name: "missing title", record: Record{ID: 1, Soup: "s"}, wantErr: true},
		{name: "missing soup", record: Record{ID: 1, Title: "Heat"}, wantErr: true},
		{name: "rating out of range", record: Record{ID: 1, Title: "Heat", Soup: "s", Rating: ptr(11)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidRecord)
				return
			}
			assert.NoError(t, err)
		})
	}
}
