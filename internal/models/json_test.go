package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_ValueScan(t *testing.T) {
	in := JSON{"status": float64(200), "data": map[string]interface{}{"transRef": "REF1"}}

	v, err := in.Value()
	require.NoError(t, err)

	tests := []struct {
		name string
		src  interface{}
	}{
		{"string column", v},
		{"bytes column", []byte(v.(string))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out JSON
			require.NoError(t, out.Scan(tt.src))
			assert.Equal(t, in, out)
		})
	}

	var out JSON
	require.NoError(t, out.Scan(nil))
	assert.Nil(t, out)
	assert.Error(t, out.Scan(42))
}

func TestUser_DisplayName(t *testing.T) {
	assert.Equal(t, "Bob", (&User{Name: "Bob", Email: "bob@x"}).DisplayName())
	assert.Equal(t, "bob@x", (&User{Email: "bob@x"}).DisplayName())
}
