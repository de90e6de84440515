package constants

// Field identifies one of the four extracted receipt fields.
type Field string

const (
	FieldCode   Field = "code"
	FieldDate   Field = "date"
	FieldAmount Field = "amount"
	FieldNTPN   Field = "ntpn"
)

var allFields = []Field{FieldCode, FieldDate, FieldAmount, FieldNTPN}

// Fields returns the extracted fields in report order.
func Fields() []Field {
	out := make([]Field, len(allFields))
	copy(out, allFields)
	return out
}

var fieldLabels = map[Field]string{
	FieldCode:   "Kode Setor",
	FieldDate:   "Tanggal",
	FieldAmount: "Jumlah",
	FieldNTPN:   "NTPN",
}

// Label is the Indonesian display name used in warnings and exports.
func (f Field) Label() string {
	if l, ok := fieldLabels[f]; ok {
		return l
	}
	return string(f)
}
