// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfds

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the operation cannot proceed immediately.
//
// For SPSC Enqueue and any TryEnqueue: the ring is full (backpressure)
// For SPSC Dequeue and any TryDequeue: the ring is empty
// For StackHandle.Pop: the stack is empty
//
// ErrWouldBlock is a control flow signal, not a failure. The caller decides
// whether to retry (with backoff or yield) or move on.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
//
//	backoff := iox.Backoff{}
//	for {
//	    err := q.Enqueue(&item)
//	    if err == nil {
//	        backoff.Reset()
//	        break
//	    }
//	    if lfds.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    return err
//	}
var ErrWouldBlock = iox.ErrWouldBlock

// ErrThreadLimitExceeded is returned by Register when every hazard slot of a
// reclaimer has already been handed out.
//
// The slot count is fixed at construction. Hitting this error means the
// reclaimer (or the stack owning it) was sized for fewer goroutines than are
// using it; it is a configuration failure, not a transient condition.
var ErrThreadLimitExceeded = errors.New("lfds: hazard thread limit exceeded")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
