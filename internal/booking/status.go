package booking

type Status string

const (
	StatusMenunggu     Status = "MENUNGGU"
	StatusDikonfirmasi Status = "DIKONFIRMASI"
	StatusDitolak      Status = "DITOLAK"
	StatusDibatalkan   Status = "DIBATALKAN"
	StatusDibayar      Status = "DIBAYAR"
)

var validNext = map[Status]map[Status]bool{
	StatusMenunggu:     {StatusDikonfirmasi: true, StatusDitolak: true, StatusDibatalkan: true},
	StatusDikonfirmasi: {StatusDibatalkan: true, StatusDibayar: true},
	StatusDibayar:      {},
	StatusDitolak:      {},
	StatusDibatalkan:   {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// Terminal: tidak ada transisi keluar lagi.
func (s Status) Terminal() bool {
	return len(validNext[s]) == 0
}

// NonTerminal dipakai query hold inventory: booking MENUNGGU/DIKONFIRMASI masih
// memegang stok.
func (s Status) HoldsStock() bool {
	return s == StatusMenunggu || s == StatusDikonfirmasi
}
