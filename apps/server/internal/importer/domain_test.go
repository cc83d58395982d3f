package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tilsley/bindle/apps/server/internal/importer"
)

func TestDeriveContainerName(t *testing.T) {
	assert.Equal(t, "acme-widgets", importer.DeriveContainerName("Acme", "Widgets"))
	assert.Equal(t, "acme-my.repo", importer.DeriveContainerName("acme", "my.repo"))
}

func TestNewPassword_ShapeAndAlphabet(t *testing.T) {
	seen := make(map[string]bool)
	for range 50 {
		p := importer.NewPassword()
		assert.Len(t, p, 8)
		for _, r := range p {
			assert.NotContains(t, "0O1lI", string(r))
		}
		seen[p] = true
	}
	// 50 draws from a 54^8 space should never collide.
	assert.Greater(t, len(seen), 45)
}

func TestHumanSize(t *testing.T) {
	cases := []struct {
		kb   int64
		want string
	}{
		{0, "0 KB"},
		{512, "512 KB"},
		{1023, "1023 KB"},
		{1024, "1.0 MB"},
		{2048, "2.0 MB"},
		{1536, "1.5 MB"},
		{1 << 20, "1.0 GB"},
		{3 << 20, "3.0 GB"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, importer.HumanSize(tc.kb), "kb=%d", tc.kb)
	}
}

func TestHumanSize_RoundsToOneDecimal(t *testing.T) {
	got := importer.HumanSize(1126) // 1.0996 MB
	assert.True(t, strings.HasSuffix(got, " MB"))
	assert.Equal(t, "1.1 MB", got)
}
