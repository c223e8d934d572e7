package store

import "merkez/api/config"

func configFor(driver string) config.StoreConfig {
	return config.StoreConfig{Driver: driver, MaxEvents: 1000}
}
