package monitor

import "time"

type Status struct {
	Redis      bool      `json:"redis"`
	StoreDir   bool      `json:"store_dir"`
	OpenStores int       `json:"open_stores"`
	LastCheck  time.Time `json:"last_check"`
}
