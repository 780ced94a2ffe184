package uid

import (
	"fmt"
	"os"
	"time"

	"github.com/sony/sonyflake"
)

// UID generates unique, time ordered id.
type UID interface {
	NextID() (uint64, error)
}

var epoch = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

// NewSonyflake returns sonyflake generator.
// When no private IP address is found (i.e: running on laptop without network),
// the machine id is derived from the process id.
func NewSonyflake() (UID, error) {
	gen := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: epoch,
	})
	if gen != nil {
		return gen, nil
	}

	gen = sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: epoch,
		MachineID: func() (uint16, error) {
			return uint16(os.Getpid() & 0xFFFF), nil
		},
	})
	if gen == nil {
		return nil, fmt.Errorf("uid generator is nil")
	}

	return gen, nil
}
