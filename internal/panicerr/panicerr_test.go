package panicerr_test

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pjslang/pjs/internal/panicerr"
)

func TestRecover(t *testing.T) {
	errBoom := errors.New("boom")

	for _, tc := range []struct {
		name  string
		f     func() error
		check func(t *testing.T, err error)
	}{
		{"nil", func() error { return nil }, func(t *testing.T, err error) {
			assert.NoError(t, err)
		}},

		{"error", func() error { return errBoom }, func(t *testing.T, err error) {
			assert.Equal(t, errBoom, err)
			assert.False(t, panicerr.IsPanic(err))
		}},

		{"panic value", func() error { panic("nope") }, func(t *testing.T, err error) {
			require.True(t, panicerr.IsPanic(err))
			assert.EqualError(t, err, "test panic: nope")
			assert.NotEmpty(t, panicerr.PanicStack(err))
			assert.Contains(t, fmt.Sprintf("%+v", err), "goroutine")
		}},

		{"panic error", func() error { panic(errBoom) }, func(t *testing.T, err error) {
			require.True(t, panicerr.IsPanic(err))
			assert.True(t, errors.Is(err, errBoom))
		}},

		{"goexit", func() error {
			runtime.Goexit()
			return nil
		}, func(t *testing.T, err error) {
			assert.True(t, panicerr.IsExit(err))
			assert.EqualError(t, err, "test called runtime.Goexit")
			assert.Empty(t, panicerr.PanicStack(err))
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tc.check(t, panicerr.Recover("test", tc.f))
		})
	}
}
