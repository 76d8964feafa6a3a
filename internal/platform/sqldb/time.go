package sqldb

import (
	"fmt"
	"time"
)

// Timestamp scans a timestamp column written by either dialect.
type Timestamp struct {
	T *time.Time
}

func (ts Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*ts.T = v.UTC()
	case int64:
		*ts.T = time.UnixMicro(v).UTC()
	case []byte:
		return ts.parse(string(v))
	case string:
		return ts.parse(v)
	case nil:
		*ts.T = time.Time{}
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
	return nil
}

func (ts Timestamp) parse(s string) error {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("scan timestamp: %w", err)
	}
	*ts.T = t.UTC()
	return nil
}

// ScanTime is shorthand for Timestamp{T: t}.
func ScanTime(t *time.Time) Timestamp {
	return Timestamp{T: t}
}
