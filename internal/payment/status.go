package payment

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusFailed  Status = "FAILED"
)

// Terminal: PAID/FAILED tidak pernah bertransisi lagi.
func (s Status) Terminal() bool { return s == StatusPaid || s == StatusFailed }

type Method string

const (
	MethodQRIS     Method = "QRIS"
	MethodTransfer Method = "TRANSFER"
	MethodCash     Method = "CASH"
)

// ParseMethod: default QRIS, mengikuti perilaku createPayment lama.
func ParseMethod(s string) Method {
	switch s {
	case "TRANSFER":
		return MethodTransfer
	case "CASH":
		return MethodCash
	default:
		return MethodQRIS
	}
}

// MapGatewayStatus: fungsi murni (currentStatus tidak ikut — reconcile memutuskan
// commit lewat CAS terpisah). ok=false berarti status gateway tidak dikenal dan
// tidak boleh diapply (mis. capture dengan fraud challenge).
func MapGatewayStatus(transactionStatus, fraudStatus string) (Status, bool) {
	switch transactionStatus {
	case "capture":
		if fraudStatus == "accept" {
			return StatusPaid, true
		}
		return "", false
	case "settlement":
		return StatusPaid, true
	case "deny", "cancel", "expire":
		return StatusFailed, true
	case "pending":
		return StatusPending, true
	}
	return "", false
}
