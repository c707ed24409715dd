package tag_test

import (
	"testing"

	"github.com/named-data/ndnlp/std/types/tag"
	tu "github.com/named-data/ndnlp/std/utils/testutils"
	"github.com/stretchr/testify/require"
)

type faceTag uint64
type otherFaceTag uint64
type tokenTag struct {
	Value []byte
}

func TestHostGetSet(t *testing.T) {
	tu.SetT(t)

	var h tag.Host
	require.Nil(t, tag.Get[faceTag](&h))
	require.Equal(t, 0, h.Len())

	a := faceTag(1)
	tag.Set(&h, &a)
	require.Same(t, &a, tag.Get[faceTag](&h))
	require.Nil(t, tag.Get[otherFaceTag](&h))
	require.Nil(t, tag.Get[tokenTag](&h))
	require.Equal(t, 1, h.Len())

	// replaces, never accumulates
	b := faceTag(2)
	tag.Set(&h, &b)
	require.Equal(t, faceTag(2), *tag.Get[faceTag](&h))
	require.Equal(t, 1, h.Len())

	tok := &tokenTag{Value: []byte{0x01}}
	tag.Set(&h, tok)
	require.Equal(t, 2, h.Len())
	require.Same(t, tok, tag.Get[tokenTag](&h))

	// shared, not copied
	tok.Value = []byte{0x02}
	require.Equal(t, []byte{0x02}, tag.Get[tokenTag](&h).Value)
}

func TestHostRemove(t *testing.T) {
	tu.SetT(t)

	var h tag.Host

	// removing from an empty host is fine
	tag.Set[faceTag](&h, nil)
	tag.Remove[tokenTag](&h)

	a := faceTag(1)
	o := otherFaceTag(2)
	tag.Set(&h, &a)
	tag.Set(&h, &o)

	tag.Set[faceTag](&h, nil)
	require.Nil(t, tag.Get[faceTag](&h))
	require.Same(t, &o, tag.Get[otherFaceTag](&h))

	tag.Remove[otherFaceTag](&h)
	require.Nil(t, tag.Get[otherFaceTag](&h))
	require.Equal(t, 0, h.Len())

	tag.Set(&h, &a)
	h.Clear()
	require.Nil(t, tag.Get[faceTag](&h))
	require.Equal(t, 0, h.Len())
}

func TestHostCopy(t *testing.T) {
	tu.SetT(t)

	var h tag.Host
	a := faceTag(1)
	tag.Set(&h, &a)

	c := h
	b := faceTag(2)
	tok := &tokenTag{}
	tag.Set(&c, &b)
	tag.Set(&c, tok)
	require.Same(t, &a, tag.Get[faceTag](&h))
	require.Nil(t, tag.Get[tokenTag](&h))
	require.Equal(t, 1, h.Len())

	tag.Remove[faceTag](&h)
	require.Same(t, &b, tag.Get[faceTag](&c))
	require.Equal(t, 2, c.Len())
}

func TestTypeId(t *testing.T) {
	tu.SetT(t)

	require.Equal(t, tag.TypeId[faceTag](), tag.TypeId[faceTag]())
	require.NotEqual(t, tag.TypeId[faceTag](), tag.TypeId[otherFaceTag]())
	require.NotEqual(t, tag.TypeId[faceTag](), tag.TypeId[*faceTag]())

	// concurrent first use yields a single id
	ids := make(chan int, 8)
	for i := 0; i < 8; i++ {
		go func() { ids <- tag.TypeId[struct{ X int }]() }()
	}
	first := <-ids
	for i := 1; i < 8; i++ {
		require.Equal(t, first, <-ids)
	}
}
