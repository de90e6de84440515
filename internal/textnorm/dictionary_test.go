package textnorm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDictionaryCorrect(t *testing.T) {
	d := NewDictionary()

	tests := []struct {
		in, want string
	}{
		{"tangal", "tanggal"},
		{"jumlan", "jumlah"},
		{"setor:", "setor:"},
		{"setr:", "setor:"},
		{"penerimaam", "penerimaan"},
		{"JUMLAH", "JUMLAH"},
		{"rp", "rp"},
		{"pph", "pph"},
		{"411211", "411211"},
		{"1.500.000,00", "1.500.000,00"},
		{"ntpn1234", "ntpn1234"},
		{"xyzzyq", "xyzzyq"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Correct(tt.in))
		})
	}
}

func TestDictionaryPassThroughIsPure(t *testing.T) {
	d := NewDictionary()
	for _, w := range []string{"kode", "lorem", "qwerty"} {
		assert.Equal(t, d.Correct(w), d.Correct(w))
	}
}

func TestDictionaryExtraWords(t *testing.T) {
	d := NewDictionary("Sakti", "sakti", "")
	assert.True(t, d.Contains("sakti"))
	assert.Equal(t, "sakti", d.Correct("saktl"))
	assert.Equal(t, NewDictionary().Len()+1, d.Len())
}

func TestLoadDictionary(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kamus.txt")
	require.NoError(t, os.WriteFile(path, []byte("# kamus\nmeterai\n\nkwitansi\n"), 0o644))

	d, err := LoadDictionary(path)
	require.NoError(t, err)
	assert.True(t, d.Contains("meterai"))
	assert.True(t, d.Contains("kwitansi"))
	assert.True(t, d.Contains("ntpn"))
	assert.False(t, d.Contains("# kamus"))

	_, err = LoadDictionary(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
