package probes

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"testing"
)

func TestIsPermissionError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{os.ErrPermission, true},
		{syscall.EPERM, true},
		{fmt.Errorf("listen ip4:icmp: %w", os.ErrPermission), true},
		{errors.New("socket: operation not permitted"), true},
		{errors.New("dial: permission denied"), true},
		{errors.New("i/o timeout"), false},
		{errors.New("no route to host"), false},
	}
	for _, tc := range cases {
		if got := isPermissionError(tc.err); got != tc.want {
			t.Fatalf("isPermissionError(%v): expected %v, got %v", tc.err, tc.want, got)
		}
	}
}
