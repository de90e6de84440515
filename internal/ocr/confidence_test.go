package ocr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicConfidence(t *testing.T) {
	assert.InDelta(t, 0.2, HeuristicConfidence("lorem ipsum"), 1e-6)

	receipt := strings.Join([]string{
		"bukti penerimaan negara",
		"tanggal bayar 15/01/2024",
		"jumlah setor rp 1.500.000,00",
		"ntpn 1234 5678 9012 3456",
		"kode akun pajak 411211 kode jenis setoran 100",
	}, "\n")
	assert.InDelta(t, 0.95, HeuristicConfidence(receipt), 1e-6)
}

func TestMeanConfidence(t *testing.T) {
	_, ok := MeanConfidence([]Fragment{{Confidence: -1}})
	assert.False(t, ok)

	mean, ok := MeanConfidence([]Fragment{{Confidence: 0.9}, {Confidence: -1}, {Confidence: 0.7}})
	assert.True(t, ok)
	assert.InDelta(t, 0.8, mean, 1e-6)
}

func TestPageConfidenceBlend(t *testing.T) {
	frags := []Fragment{{Text: "lorem", Confidence: 1.0}}
	assert.InDelta(t, 0.7+0.3*0.2, PageConfidence(frags, "lorem"), 1e-6)

	assert.InDelta(t, 0.2, PageConfidence([]Fragment{{Text: "lorem", Confidence: -1}}, "lorem"), 1e-6)
}
