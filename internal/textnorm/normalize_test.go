package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCleansAndFilters(t *testing.T) {
	n := NewNormalizer(Options{}, nil)

	got := n.Normalize([]string{
		"  KODE   SETOR:\t411211 ",
		"ab",
		"-----",
		"Tanggal\r\nBayar 15/01/2024",
		"",
	})

	assert.Equal(t, []string{
		"kode setor: 411211",
		"tanggal",
		"bayar 15/01/2024",
	}, got)
}

func TestNormalizeMinFragmentLen(t *testing.T) {
	n := NewNormalizer(Options{MinFragmentLen: 5}, nil)
	assert.Equal(t, []string{"jumlah"}, n.Normalize([]string{"ntpn", "Jumlah"}))
}

func TestNormalizeAppliesCorrector(t *testing.T) {
	upper := CorrectorFunc(func(w string) string {
		if w == "setr" {
			return "setor"
		}
		return w
	})
	n := NewNormalizer(Options{Corrector: upper}, nil)

	assert.Equal(t, []string{"kode setor 411211"}, n.Normalize([]string{"Kode  Setr 411211"}))
}

func TestNormalizeIdempotent(t *testing.T) {
	n := NewNormalizer(Options{Corrector: NewDictionary()}, nil)
	in := []string{"  Jumlah  Setoran :  Rp 1.500.000,00", "NTPN 1234 5678 9012 3456", "Tangal Bayar 15 Januari 2024"}

	once := n.Normalize(in)
	twice := n.Normalize(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "tanggal bayar 15 januari 2024", once[2])
}

func TestClean(t *testing.T) {
	assert.Equal(t, "jumlah rp 10.000", Clean("\tJUMLAH   Rp 10.000  "))
	assert.Equal(t, "", Clean(strings.Repeat(" ", 4)))
}
