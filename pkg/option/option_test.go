package option

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSomeAndNone(t *testing.T) {
	some := Some("ann")
	v, ok := some.Get()
	assert.True(t, ok)
	assert.Equal(t, "ann", v)
	assert.True(t, some.IsSome())
	assert.False(t, some.IsNone())

	none := None[string]()
	_, ok = none.Get()
	assert.False(t, ok)
	assert.True(t, none.IsNone())

	var zero Option[int]
	assert.Equal(t, None[int](), zero)
}

func TestOrElse(t *testing.T) {
	assert.Equal(t, 7, Some(7).OrElse(1))
	assert.Equal(t, 1, None[int]().OrElse(1))
}

func TestPointers(t *testing.T) {
	n := 3
	assert.Equal(t, Some(3), FromPtr(&n))
	assert.Equal(t, None[int](), FromPtr[int](nil))

	p := Some(4).Ptr()
	require.NotNil(t, p)
	assert.Equal(t, 4, *p)
	assert.Nil(t, None[int]().Ptr())
}

func TestString(t *testing.T) {
	assert.Equal(t, "Some(a)", Some("a").String())
	assert.Equal(t, "None", None[string]().String())
}

func TestJSON(t *testing.T) {
	type profile struct {
		Nickname Option[string] `json:"nickname"`
		Age      Option[int]    `json:"age"`
	}

	data, err := json.Marshal(profile{Nickname: Some("a")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"nickname":"a","age":null}`, string(data))

	var decoded profile
	require.NoError(t, json.Unmarshal([]byte(`{"nickname":null,"age":30}`), &decoded))
	assert.True(t, decoded.Nickname.IsNone())
	assert.Equal(t, Some(30), decoded.Age)

	err = json.Unmarshal([]byte(`{"age":"x"}`), &decoded)
	assert.Error(t, err)
}
