package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vesaa/arcaudit/internal/table"
)

func TestHasAgent(t *testing.T) {
	tests := []struct {
		status table.Value
		want   bool
	}{
		{table.Str("Connected"), true},
		{table.Str("Expired"), true},
		{table.Str("Offline"), true},
		{table.Str("Disconnected"), false},
		{table.Str("connected"), false},
		{table.Str(""), false},
		{table.Null, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HasAgent(tt.status), "status %+v", tt.status)
	}
}

func TestKind(t *testing.T) {
	col := &MissingColumnError{Table: "primary", Columns: []string{"Hostname"}}
	assert.Equal(t, KindSourceRead, Kind(fmt.Errorf("load: %w", &SourceReadError{Source: "x.csv", Err: errors.New("boom")})))
	assert.Equal(t, KindMissingColumn, Kind(col))
	assert.Equal(t, KindJoin, Kind(&JoinError{Err: col}))
	assert.Equal(t, KindInternal, Kind(errors.New("other")))
}

func TestMissingColumnMessage(t *testing.T) {
	err := &MissingColumnError{Table: "secondary", Columns: []string{"HOST NAME", "NAME"}, Alternatives: true}
	assert.Equal(t, `secondary table: missing column "HOST NAME" or "NAME"`, err.Error())
}
