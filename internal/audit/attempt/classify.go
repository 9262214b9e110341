package attempt

import (
	"context"
	"errors"
	"strings"
)

// notReadySignatures match audit-engine failures that mean the document had
// not finished materializing. These get one in-place retry with permissive
// engine options before counting as engine_failure.
var notReadySignatures = []string{
	"document not ready",
	"documentelement",
	"no document",
	"unable to find",
}

func isNotReadyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range notReadySignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}

func isTimeoutErr(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
