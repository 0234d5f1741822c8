package index

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"testing"

	"golang.org/x/xerrors"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(FailureTestSuite))

// FailureTestSuite covers the three ways a Failure is built.
type FailureTestSuite struct{}

func Test(t *testing.T) {
	gc.TestingT(t)
}

func (s *FailureTestSuite) TestMessageAndCause(c *gc.C) {
	cause := &os.PathError{Op: "read", Path: "/var/lib/textindexer/idx", Err: io.ErrUnexpectedEOF}
	f := NewFailure("Failed to read index file", cause)

	c.Assert(f.Message(), gc.Equals, "Failed to read index file")
	c.Assert(f.Cause(), gc.Equals, error(cause))
	c.Assert(f.Error(), gc.Equals, "Failed to read index file: read /var/lib/textindexer/idx: unexpected EOF")
	c.Assert(fmt.Sprintf("%v", f), gc.Equals, f.Error())
}

func (s *FailureTestSuite) TestMessageOnly(c *gc.C) {
	for _, msg := range []string{"segment merge aborted", "", "ünïcödé"} {
		f := NewFailureMessage(msg)
		c.Assert(f.Message(), gc.Equals, msg)
		c.Assert(f.Cause(), gc.IsNil)
		c.Assert(f.Unwrap(), gc.IsNil)
	}
	c.Assert(NewFailureMessage("segment merge aborted").Error(), gc.Equals, "segment merge aborted")
	c.Assert(NewFailureMessage("").Error(), gc.Equals, "index failure")
}

func (s *FailureTestSuite) TestCauseOnly(c *gc.C) {
	cause := xerrors.New("disk quota exceeded")
	f := NewFailureCause(cause)

	c.Assert(f.Cause(), gc.Equals, cause)
	c.Assert(f.Message(), gc.Equals, "disk quota exceeded")
	c.Assert(f.Error(), gc.Equals, "disk quota exceeded")
	c.Assert(fmt.Sprintf("%v", f), gc.Equals, "disk quota exceeded")

	empty := NewFailure("", cause)
	c.Assert(empty.Error(), gc.Equals, "disk quota exceeded")
	c.Assert(fmt.Sprintf("%v", empty), gc.Equals, "disk quota exceeded")
}

func (s *FailureTestSuite) TestNilCause(c *gc.C) {
	f := NewFailureCause(nil)
	c.Assert(f.Cause(), gc.IsNil)
	c.Assert(f.Message(), gc.Equals, "")
	c.Assert(f.Error(), gc.Equals, "index failure")
}

func (s *FailureTestSuite) TestAccessorsAreStable(c *gc.C) {
	cause := xerrors.New("boom")
	f := NewFailure("flush", cause)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = f.Message()
				_ = f.Cause()
				_ = f.Error()
			}
		}()
	}
	wg.Wait()

	c.Assert(f.Message(), gc.Equals, f.Message())
	c.Assert(f.Cause(), gc.Equals, f.Cause())
	c.Assert(f.Message(), gc.Equals, "flush")
	c.Assert(f.Cause(), gc.Equals, cause)
}

func (s *FailureTestSuite) TestCauseChain(c *gc.C) {
	f := NewFailure("find by id", ErrNotFound)
	wrapped := xerrors.Errorf("lookup: %w", f)

	c.Assert(xerrors.Is(wrapped, ErrNotFound), gc.Equals, true)
	c.Assert(xerrors.Is(wrapped, ErrMissingLinkID), gc.Equals, false)

	got, ok := AsFailure(wrapped)
	c.Assert(ok, gc.Equals, true)
	c.Assert(got, gc.Equals, f)

	_, ok = AsFailure(xerrors.New("plain"))
	c.Assert(ok, gc.Equals, false)
	_, ok = AsFailure(nil)
	c.Assert(ok, gc.Equals, false)
}

func (s *FailureTestSuite) TestDetailedFormat(c *gc.C) {
	f := NewFailure("Failed to read index file", io.ErrUnexpectedEOF)
	out := fmt.Sprintf("%+v", f)

	c.Assert(strings.Contains(out, "Failed to read index file"), gc.Equals, true)
	c.Assert(strings.Contains(out, "unexpected EOF"), gc.Equals, true)
	c.Assert(strings.Contains(out, "error_test.go"), gc.Equals, true, gc.Commentf("missing call site in %q", out))
}
