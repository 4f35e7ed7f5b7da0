package neoupload

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValueConstructors(t *testing.T) {
	assert.Equal(t, "x", String("x").Native())
	assert.Equal(t, int64(4), Int(4).Native())
	assert.Equal(t, 2.5, Float(2.5).Native())
	assert.Equal(t, true, Bool(true).Native())
	assert.Equal(t, []any{"a", int64(1)}, List(String("a"), Int(1)).Native())
	assert.Equal(t,
		map[string]any{"k": "v", "n": []any{false}},
		Map(map[string]Value{"k": String("v"), "n": List(Bool(false))}).Native(),
	)
}

func TestQueryParams(t *testing.T) {
	params := queryParams(map[string]Value{
		"name": String("A"),
		"age":  Int(34),
	})
	assert.Equal(t, map[string]any{"name": "A", "age": int64(34)}, params)

	assert.Equal(t, map[string]any{}, queryParams(nil))
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		contains string
	}{
		{&FileError{Path: "g.json", Err: errors.New("no such file")}, ErrFile, "g.json"},
		{&ParseError{Key: `node "n1"`, Msg: "missing label"}, ErrParse, `node "n1"`},
		{&ReferenceError{EdgeKey: "a->b", NodeID: "b"}, ErrReference, `"b"`},
		{&DatabaseError{Op: "clear", Err: errors.New("refused")}, ErrDatabase, "clear"},
	}

	for _, tt := range tests {
		assert.ErrorIs(t, tt.err, tt.sentinel)
		assert.Contains(t, tt.err.Error(), tt.contains)
	}
}
