package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesInputPrecision(t *testing.T) {
	a, err := Parse("10.12345")
	require.NoError(t, err)
	assert.Equal(t, int32(5), a.DecimalPlaces())

	b, err := Parse("10.00")
	require.NoError(t, err)
	assert.Equal(t, int32(2), b.DecimalPlaces())
}

func TestParse_RejectsNonDecimal(t *testing.T) {
	_, err := Parse("ten")
	assert.Error(t, err)
}

func TestAdd_ExactUnderRepeatedAddition(t *testing.T) {
	// 0.1 is the classic binary-float trap; 1000 additions must land
	// exactly on 100.0000 with no drift.
	step, err := Parse("0.1")
	require.NoError(t, err)

	sum := Zero()
	for i := 0; i < 1000; i++ {
		sum = sum.Add(step)
	}

	want, _ := Parse("100")
	assert.True(t, sum.Equal(want))
	assert.Equal(t, "100.0000", sum.String())
}

func TestSub_AndComparisons(t *testing.T) {
	a, _ := Parse("100.0000")
	b, _ := Parse("15.2500")

	diff := a.Sub(b)
	assert.Equal(t, "84.7500", diff.String())
	assert.True(t, b.LessThan(a))
	assert.False(t, a.LessThan(b))

	neg := b.Sub(a)
	assert.True(t, neg.IsNegative())
	assert.False(t, neg.IsPositive())
}

func TestString_AlwaysFourFractionalDigits(t *testing.T) {
	a, _ := Parse("7")
	assert.Equal(t, "7.0000", a.String())

	b, _ := Parse("7.25")
	assert.Equal(t, "7.2500", b.String())
}

func TestJSON_QuotedDecimalString(t *testing.T) {
	a, _ := Parse("20.5000")

	data, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Equal(t, `"20.5000"`, string(data))

	var back Amount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(a))
}

func TestUnmarshalJSON_RejectsNumbers(t *testing.T) {
	var a Amount
	err := json.Unmarshal([]byte(`20.5`), &a)
	assert.Error(t, err)
}

func TestZero(t *testing.T) {
	assert.True(t, Zero().IsZero())
	assert.Equal(t, "0.0000", Zero().String())
}
