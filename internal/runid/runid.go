// Package runid names a single envd process in logs.
package runid

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

func New() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return fmt.Sprintf("run-%d", time.Now().UTC().UnixNano())
	}
	return "run-" + id.String()
}

func NowTS() string { return time.Now().UTC().Format(time.RFC3339Nano) }
