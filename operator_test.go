package snowpager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Operator_Valid(t *testing.T) {
	tests := []struct {
		name  string
		in    Operator
		valid bool
	}{
		{"greater than", OperatorGT, true},
		{"less than", OperatorLT, true},
		{"partition equality", operatorEq, true},
		{"less or equal", Operator("<="), false},
		{"injection", Operator("< 0 OR 1 = 1 --"), false},
		{"empty", Operator(""), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.in.Valid())
		})
	}
}
