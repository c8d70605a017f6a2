package slip

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeData(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	dec := json.NewDecoder(bytes.NewBufferString(raw))
	dec.UseNumber()
	var m map[string]interface{}
	require.NoError(t, dec.Decode(&m))
	return m
}

func TestNormalize_Strategies(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want SlipData
	}{
		{
			name: "english names when thai missing",
			raw: `{"amount":{"amount":12.5},
				"sender":{"account":{"name":{"en":"MR A"}}},
				"receiver":{"account":{"name":{"en":"SHOP"}}}}`,
			want: SlipData{Amount: mustDecimal("12.5"), HasAmount: true, SenderName: "MR A", ReceiverName: "SHOP"},
		},
		{
			name: "plain string names",
			raw: `{"amount":"40",
				"sender":{"account":{"name":"Alice"}},
				"receiver":{"account":{"name":"Shop Co"}}}`,
			want: SlipData{Amount: mustDecimal("40"), HasAmount: true, SenderName: "Alice", ReceiverName: "Shop Co"},
		},
		{
			name: "bank short name then code",
			raw:  `{"receiver":{"bank":{"short_name":"SCB","name":"Siam"}}}`,
			want: SlipData{ReceiverBankID: "SCB", ReceiverBankName: "Siam"},
		},
		{
			name: "bank code",
			raw:  `{"receiver":{"bank":{"code":14}}}`,
			want: SlipData{ReceiverBankID: "14"},
		},
		{
			name: "receiver display name before name",
			raw:  `{"receiver":{"displayName":"Display","name":"Name"}}`,
			want: SlipData{ReceiverName: "Display"},
		},
		{
			name: "unparseable amount ignored",
			raw:  `{"amount":{"amount":"abc"}}`,
			want: SlipData{},
		},
		{
			name: "numeric reference",
			raw:  `{"transRef":123456}`,
			want: SlipData{Reference: "123456"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(decodeData(t, tt.raw))
			assert.Equal(t, tt.want.HasAmount, got.HasAmount)
			if tt.want.HasAmount {
				assert.True(t, tt.want.Amount.Equal(got.Amount), "amount %s", got.Amount)
			}
			assert.Equal(t, tt.want.Reference, got.Reference)
			assert.Equal(t, tt.want.SenderName, got.SenderName)
			assert.Equal(t, tt.want.ReceiverName, got.ReceiverName)
			assert.Equal(t, tt.want.ReceiverBankID, got.ReceiverBankID)
			assert.Equal(t, tt.want.ReceiverBankName, got.ReceiverBankName)
		})
	}
}

func TestMaskedAccountMatches(t *testing.T) {
	assert.True(t, maskedAccountMatches("x-xxxx-xxxx8-20-6", "1468700018206"))
	assert.True(t, maskedAccountMatches("xxx-xxx-8206", "146-8700-018206"))
	assert.False(t, maskedAccountMatches("x-xxxx-xxxx9-20-6", "1468700018206"))
	assert.False(t, maskedAccountMatches("xxx-06", "1468700018206"))
	assert.False(t, maskedAccountMatches("x-xxxx-xxxx8-20-6", ""))
}

func TestReceiverNameMatches(t *testing.T) {
	assert.True(t, receiverNameMatches("Shop Co Ltd", "shopco"))
	assert.True(t, receiverNameMatches("SHOP", "Shopping Mall"))
	assert.False(t, receiverNameMatches("anything", ""))
	assert.False(t, receiverNameMatches("anything", "   "))
	assert.False(t, receiverNameMatches("", "Shop Co"))
	assert.False(t, receiverNameMatches("Other Store", "Shop Co"))
}
