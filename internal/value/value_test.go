package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Verify all types implement Value (compile-time check via assignment)
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
	var _ Value = Bool(true)
	var _ Value = Enum("ASC")
	var _ Value = List{String("a"), Int(1)}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysRFC8785Order(t *testing.T) {
	obj := Object{
		"a":  Int(1),
		"A":  Int(2),
		"aa": Int(3),
		"aA": Int(4),
		"Aa": Int(5),
		"AA": Int(6),
	}

	// 'A' = 65, 'a' = 97
	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
}

func TestObjectGetOnNil(t *testing.T) {
	var obj Object
	v, ok := obj.Get("where")
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestMarshalJSON(t *testing.T) {
	obj := Object{
		"title":  String("Matrix"),
		"rating": Float(8.5),
		"year":   Int(1999),
		"dir":    Enum("DESC"),
		"tags":   List{String("sci-fi"), Null{}},
		"seen":   Bool(true),
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"dir":"DESC","rating":8.5,"seen":true,"tags":["sci-fi",null],"title":"Matrix","year":1999}`,
		string(data))
}

func TestMarshalRejectsNonFiniteFloat(t *testing.T) {
	_, err := Marshal(Float(posInf()))
	require.Error(t, err)
}

func TestIsNull(t *testing.T) {
	assert.True(t, IsNull(nil))
	assert.True(t, IsNull(Null{}))
	assert.False(t, IsNull(String("")))
	assert.False(t, IsNull(Int(0)))
}

func TestAsString(t *testing.T) {
	s, ok := AsString(Enum("ASC"))
	assert.True(t, ok)
	assert.Equal(t, "ASC", s)

	s, ok = AsString(String("DESC"))
	assert.True(t, ok)
	assert.Equal(t, "DESC", s)

	_, ok = AsString(Int(1))
	assert.False(t, ok)
}

func TestTypeName(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{nil, "null"},
		{Null{}, "null"},
		{String("x"), "string"},
		{Int(1), "int"},
		{Float(1.5), "float"},
		{Bool(false), "boolean"},
		{Enum("ASC"), "enum"},
		{List{}, "list"},
		{Object{}, "object"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeName(tt.v))
	}
}

func TestUnmarshal(t *testing.T) {
	v, err := Unmarshal([]byte(`{"first": 10, "ratio": 0.5, "after": "abc", "tags": ["a", true, null]}`))
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.Equal(t, Int(10), obj["first"])
	assert.Equal(t, Float(0.5), obj["ratio"])
	assert.Equal(t, String("abc"), obj["after"])
	assert.Equal(t, List{String("a"), Bool(true), Null{}}, obj["tags"])
}

func TestUnmarshalObject(t *testing.T) {
	obj, err := UnmarshalObject([]byte(`  `))
	require.NoError(t, err)
	assert.Empty(t, obj)

	_, err = UnmarshalObject([]byte(`[1, 2]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected a JSON object")

	obj, err = UnmarshalObject([]byte(`{"id": "TW92aWU6ZGJJZDox"}`))
	require.NoError(t, err)
	assert.Equal(t, String("TW92aWU6ZGJJZDox"), obj["id"])
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]any{
		"first": 5,
		"score": 2.0,
		"ratio": 0.25,
		"name":  "Keanu",
		"list":  []any{int64(1), nil},
	})
	require.NoError(t, err)

	obj := v.(Object)
	assert.Equal(t, Int(5), obj["first"])
	assert.Equal(t, Int(2), obj["score"], "integral floats from YAML decode as Int")
	assert.Equal(t, Float(0.25), obj["ratio"])
	assert.Equal(t, String("Keanu"), obj["name"])
	assert.Equal(t, List{Int(1), Null{}}, obj["list"])
}

func TestFromAnyUnsupported(t *testing.T) {
	_, err := FromAny(struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestToAnyRoundTrip(t *testing.T) {
	in := Object{
		"a": List{Int(1), Enum("ASC")},
		"b": Null{},
	}
	out := ToAny(in).(map[string]any)
	assert.Equal(t, []any{int64(1), "ASC"}, out["a"])
	assert.Nil(t, out["b"])
}
