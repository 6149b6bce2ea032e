package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubstitute(t *testing.T) {
	data := map[string]any{
		"city": "Berlin",
		"user": map[string]any{
			"name": "Ada",
			"age":  36.0,
			"tags": []any{"a", "b"},
		},
		"limit":   10,
		"ratio":   0.25,
		"enabled": true,
		"nothing": nil,
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{"no placeholders", "plain text", "plain text"},
		{"top level", "https://api/weather?q=${city}", "https://api/weather?q=Berlin"},
		{"nested path", "hello ${user.name}", "hello Ada"},
		{"integral float", "age=${user.age}", "age=36"},
		{"int", "limit=${limit}", "limit=10"},
		{"fraction", "ratio=${ratio}", "ratio=0.25"},
		{"bool", "on=${enabled}", "on=true"},
		{"slice index", "first=${user.tags.0}", "first=a"},
		{"object is json", "${user.tags}", `["a","b"]`},
		{"missing key kept", "${user.email}", "${user.email}"},
		{"nil kept", "${nothing}", "${nothing}"},
		{"through scalar kept", "${city.name}", "${city.name}"},
		{"index out of range kept", "${user.tags.5}", "${user.tags.5}"},
		{"multiple", "${city}/${user.name}/${missing}", "Berlin/Ada/${missing}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Substitute(tt.template, data))
		})
	}
}

func TestSubstitute_MissingPathOnEmptyData(t *testing.T) {
	assert.Equal(t, "${a.b}", Substitute("${a.b}", map[string]any{}))
	assert.Equal(t, "${a.b}", Substitute("${a.b}", nil))
}

func TestSubstitute_Struct(t *testing.T) {
	type address struct {
		Street string `json:"street"`
	}
	type person struct {
		Name    string  `json:"name"`
		Address address `json:"address"`
	}

	got := Substitute("${name} lives on ${address.street}", person{Name: "Bob", Address: address{Street: "Main"}})
	assert.Equal(t, "Bob lives on Main", got)

	nested := Substitute("${p.address}", map[string]any{"p": person{Address: address{Street: "Main"}}})
	assert.Equal(t, `{"street":"Main"}`, nested)
}

func TestToText(t *testing.T) {
	assert.Equal(t, "", ToText(nil))
	assert.Equal(t, "42", ToText(42))
	assert.Equal(t, `{"a":1}`, ToText(map[string]any{"a": 1}))
	assert.Equal(t, `["x"]`, ToText([]string{"x"}))
}
