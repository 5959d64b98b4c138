package monitor

import "time"

// Status is the last observed health of the storage backends.
type Status struct {
	Driver    string     `json:"driver"`
	Storage   bool       `json:"storage"`
	Redis     *bool      `json:"redis,omitempty"`
	Error     string     `json:"error,omitempty"`
	Slots     []string   `json:"slots,omitempty"`
	Bolt      *BoltStats `json:"bolt,omitempty"`
	LastCheck time.Time  `json:"last_check"`
}

// BoltStats is the freelist and transaction counters of a bolt database.
type BoltStats struct {
	FreePageN    int `json:"free_page_n"`
	PendingPageN int `json:"pending_page_n"`
	FreeAlloc    int `json:"free_alloc"`
	TxN          int `json:"tx_n"`
	OpenTxN      int `json:"open_tx_n"`
}
