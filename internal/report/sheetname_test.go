package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSheetName(t *testing.T) {
	assert.Equal(t, "บัตรทอง", sanitizeSheetName("บัตรทอง"))
	assert.Equal(t, "กรมทหาร สวัสดิการ", sanitizeSheetName("กรม[ทหาร]/สวัสดิการ'"))
	assert.Equal(t, "-", sanitizeSheetName("[]/'"))

	long := strings.Repeat("ก", 40)
	got := sanitizeSheetName(long)
	assert.Len(t, []rune(got), 30)
}

func TestSheetNamer_StableMapping(t *testing.T) {
	n := newSheetNamer()
	first := n.Name("สิทธิ [พิเศษ]/ทดสอบ")
	second := n.Name("สิทธิ [พิเศษ]/ทดสอบ")
	assert.Equal(t, first, second)
	assert.NotContains(t, first, "[")
	assert.NotContains(t, first, "]")
	assert.NotContains(t, first, "/")
	assert.NotContains(t, first, "'")
}

func TestSheetNamer_CollisionSuffix(t *testing.T) {
	n := newSheetNamer()
	prefix := strings.Repeat("x", 30)

	a := n.Name(prefix + "AAA")
	b := n.Name(prefix + "BBB")
	c := n.Name(prefix + "CCC")

	assert.Equal(t, prefix, a)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
	assert.True(t, strings.HasSuffix(b, " 2"))
	assert.True(t, strings.HasSuffix(c, " 3"))
	for _, name := range []string{a, b, c} {
		assert.LessOrEqual(t, len([]rune(name)), maxSheetNameLen)
	}
}

func TestSheetNamer_BracketsAloneCollide(t *testing.T) {
	n := newSheetNamer()
	a := n.Name("AB")
	b := n.Name("A[B]")
	assert.Equal(t, "AB", a)
	assert.Equal(t, "AB 2", b)
}
