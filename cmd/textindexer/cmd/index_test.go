package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/joshvoll/textindexer/internal/textindexer/index"
	gc "gopkg.in/check.v1"
)

var _ = gc.Suite(new(IndexCmdTestSuite))

type IndexCmdTestSuite struct{}

func Test(t *testing.T) {
	gc.TestingT(t)
}

func (s *IndexCmdTestSuite) run(c *gc.C, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd(new(rootOptions))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (s *IndexCmdTestSuite) TestIndexAndQuery(c *gc.C) {
	dir := c.MkDir()
	c.Assert(os.WriteFile(filepath.Join(dir, "ovid.html"), []byte("<title>Ovid</title>\n<p>Metamorphoses</p>"), 0o644), gc.IsNil)
	c.Assert(os.WriteFile(filepath.Join(dir, "virgil.html"), []byte("<title>Virgil</title>\n<p>Aeneid</p>"), 0o644), gc.IsNil)

	out, logs, err := s.run(c, "index", dir, "--query", "metamorphoses", "--log-json")
	c.Assert(err, gc.IsNil)
	c.Assert(strings.Contains(out, `1 result(s) for "metamorphoses"`), gc.Equals, true, gc.Commentf("output: %s", out))
	c.Assert(strings.Contains(out, "ovid.html\tOvid"), gc.Equals, true, gc.Commentf("output: %s", out))
	c.Assert(strings.Contains(logs, `"indexed":2`), gc.Equals, true, gc.Commentf("logs: %s", logs))
}

func (s *IndexCmdTestSuite) TestESBackendWithoutNodes(c *gc.C) {
	_, _, err := s.run(c, "index", c.MkDir(), "--backend", "es", "--es-nodes", "")
	f, ok := index.AsFailure(err)
	c.Assert(ok, gc.Equals, true)
	c.Assert(f.Cause(), gc.IsNil)
	c.Assert(f.Message(), gc.Matches, "no elasticsearch nodes configured.*")
}

func (s *IndexCmdTestSuite) TestUnknownBackend(c *gc.C) {
	_, _, err := s.run(c, "index", c.MkDir(), "--backend", "sqlite")
	c.Assert(err, gc.ErrorMatches, `unknown backend "sqlite"`)
}

func (s *IndexCmdTestSuite) TestInvalidLogLevel(c *gc.C) {
	_, _, err := s.run(c, "index", c.MkDir(), "--log-level", "loud")
	c.Assert(err, gc.ErrorMatches, "invalid --log-level: .*")
}
