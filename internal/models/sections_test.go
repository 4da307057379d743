package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSections_OrderAndAppend(t *testing.T) {
	s := NewSections()
	s.Set("주요혜택", "적립 5%")
	s.Set("유의사항", "최대 3만원")
	s.Append("주요혜택", "추가 적립")
	s.Append("연회비", "국내 1만원")

	assert.Equal(t, []string{"주요혜택", "유의사항", "연회비"}, s.Keys())
	v, ok := s.Get("주요혜택")
	require.True(t, ok)
	assert.Equal(t, "적립 5%\n추가 적립", v)
	assert.Equal(t, 3, s.Len())
}

func TestSections_ZeroValueIsUsable(t *testing.T) {
	var s Sections
	_, ok := s.Get("x")
	assert.False(t, ok)
	s.Set("x", "y")
	assert.Equal(t, map[string]string{"x": "y"}, s.Map())
}

func TestSections_MarshalKeepsInsertionOrder(t *testing.T) {
	s := NewSections()
	s.Set("하", "1")
	s.Set("가", "2\n\"따옴표\"")

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Equal(t, `{"하":"1","가":"2\n\"따옴표\""}`, string(b))

	empty, err := json.Marshal(NewSections())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(empty))
}

func TestSections_UnmarshalKeepsDocumentOrder(t *testing.T) {
	var s Sections
	require.NoError(t, json.Unmarshal([]byte(`{"하":"1","가":"2"}`), &s))
	assert.Equal(t, []string{"하", "가"}, s.Keys())

	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, 0, s.Len())

	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &s))
	assert.Error(t, json.Unmarshal([]byte(`{"a":1}`), &s))
}

func TestCard_JSONShape(t *testing.T) {
	img := "http://img/1"
	s := NewSections()
	s.Set("주요혜택", "적립 5%")
	b, err := json.Marshal(Card{Name: "예시카드", ImageURL: &img, Sections: s})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, "예시카드", got["name"])
	assert.Equal(t, img, got["imageURL"])
	assert.NotContains(t, got, "detailLink")
	assert.Equal(t, map[string]any{"주요혜택": "적립 5%"}, got["sections"])
}

func TestSections_RoundTripKeepsOrderOfManyKeys(t *testing.T) {
	s := NewSections()
	titles := []string{"연회비", "주요혜택", "유의사항", "실적", "해외 이용", "교통", "통신", "쇼핑"}
	for i, title := range titles {
		s.Set(title, string(rune('a'+i)))
	}

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var back Sections
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, titles, back.Keys())
	assert.Equal(t, s.Map(), back.Map())
}
