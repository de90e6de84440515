package constants

// DepositCode is a tax-category code ("kode setor" / kode akun pajak) printed on a receipt.
type DepositCode string

const (
	PPNDalamNegeri  DepositCode = "411211"
	PPhPasal21      DepositCode = "411121"
	PPhPasal22      DepositCode = "411122"
	PPhPasal23      DepositCode = "411124"
	PPhPasal25      DepositCode = "411125"
	PPhPasal26      DepositCode = "411127"
	PPhFinal        DepositCode = "411128"
	PPhPasal25Badan DepositCode = "411126"
)

// KnownDepositCodes are matched verbatim before any generic digit search, in this order.
var KnownDepositCodes = []DepositCode{
	PPNDalamNegeri,
	PPhPasal21,
	PPhPasal25Badan,
	PPhFinal,
	PPhPasal23,
	PPhPasal25,
}

var depositCodeLabels = map[DepositCode]string{
	PPNDalamNegeri:  "PPN Dalam Negeri",
	PPhPasal21:      "PPh Pasal 21",
	PPhPasal22:      "PPh Pasal 22",
	PPhPasal23:      "PPh Pasal 23",
	PPhPasal25:      "PPh Pasal 25",
	PPhPasal26:      "PPh Pasal 26",
	PPhFinal:        "PPh Final",
	PPhPasal25Badan: "PPh Pasal 25/29 Badan",
}

// DepositCodeLabel returns a human label for a known code.
func DepositCodeLabel(code string) (string, bool) {
	label, ok := depositCodeLabels[DepositCode(code)]
	return label, ok
}
