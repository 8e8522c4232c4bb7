package repositories

import "fmt"

// Storage drivers accepted by Open.
const (
	DriverJSON   = "json"
	DriverBadger = "badger"
)

// Open returns the repository for driver, backed by path.
func Open(driver, path string) (PostRepository, error) {
	switch driver {
	case "", DriverJSON:
		return NewJSONPostRepository(path)
	case DriverBadger:
		db, err := OpenBadger(path)
		if err != nil {
			return nil, err
		}
		return NewBadgerPostRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
