// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Cedar CST Contributors

package source_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holomush/cedarcst/source"
)

func TestHandle_Accessors(t *testing.T) {
	h := source.New("a.cedar", "principal", true)
	assert.Equal(t, "a.cedar", h.Name())
	assert.Equal(t, "principal", h.Text())
	assert.True(t, h.KeepSpans())
	assert.Equal(t, "cipal", h.Slice(4, 9))
}

func TestSpan_Text(t *testing.T) {
	h := source.New("a.cedar", "principal == Foo", true)
	s := &source.Span{Start: 0, End: 9, Source: h}
	assert.Equal(t, "principal", s.Text())
}

func TestSpan_Text_NilSafety(t *testing.T) {
	var s *source.Span
	assert.Equal(t, "", s.Text())

	s = &source.Span{Start: 0, End: 1}
	assert.Equal(t, "", s.Text())
}

func TestEnclose(t *testing.T) {
	h := source.New("a.cedar", "principal == Foo::\"x\"", true)
	a := &source.Span{Start: 0, End: 9, Source: h}
	b := &source.Span{Start: 13, End: 22, Source: h}

	enc := source.Enclose(a, b)
	require.NotNil(t, enc)
	assert.Equal(t, 0, enc.Start)
	assert.Equal(t, 22, enc.End)
}

func TestEnclose_NilOperands(t *testing.T) {
	h := source.New("a.cedar", "principal", true)
	a := &source.Span{Start: 0, End: 9, Source: h}

	assert.Same(t, a, source.Enclose(nil, a))
	assert.Same(t, a, source.Enclose(a, nil))
}

func TestEnclose_PanicsOnMismatchedSource(t *testing.T) {
	h1 := source.New("a.cedar", "principal", true)
	h2 := source.New("b.cedar", "resource", true)
	a := &source.Span{Start: 0, End: 9, Source: h1}
	b := &source.Span{Start: 0, End: 8, Source: h2}

	assert.Panics(t, func() { source.Enclose(a, b) })
}

func TestSpan_MarshalJSON(t *testing.T) {
	h := source.New("a.cedar", "principal", true)
	s := &source.Span{Start: 0, End: 9, Source: h}

	data, err := json.Marshal(s)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(0), decoded["start"])
	assert.Equal(t, float64(9), decoded["end"])
	assert.Equal(t, "principal", decoded["text"])
	_, hasSource := decoded["Source"]
	assert.False(t, hasSource)
}
