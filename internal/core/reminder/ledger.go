// Package reminder tracks which deadline reminders have already been sent.
//
// A reminder is identified by the task, the threshold that selected it and the
// deadline it was computed against. Claiming the key before sending and
// releasing it on failure gives at-most-once delivery across restarts and
// across processes sharing the same ledger.
package reminder

import (
	"context"
	"fmt"
	"time"
)

// DefaultTTL bounds how long a claim is remembered. It must outlive the
// trigger window of the day it was claimed on.
const DefaultTTL = 72 * time.Hour

// Key identifies one reminder delivery.
type Key struct {
	TaskID    int64
	Threshold int
	Deadline  time.Time
}

// String renders the key as "<task>:<days>:<deadline unix>". Including the
// deadline keeps a recreated task with a new deadline from being suppressed.
func (k Key) String() string {
	return fmt.Sprintf("%d:%d:%d", k.TaskID, k.Threshold, k.Deadline.Unix())
}

// Ledger records claimed reminders.
type Ledger interface {
	// Claim marks key as sent. It reports false when the key was already
	// claimed and not yet expired.
	Claim(ctx context.Context, key Key) (bool, error)
	// Release forgets a claim so a later attempt may send again.
	Release(ctx context.Context, key Key) error
	// Claimed lists the String form of every unexpired claim.
	Claimed(ctx context.Context) ([]string, error)
}
