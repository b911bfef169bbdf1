package version_test

import (
	"encoding/json"
	"runtime"
	"testing"

	// Packages
	version "github.com/mutablelogic/go-dms/pkg/version"
	assert "github.com/stretchr/testify/assert"
)

func Test_Version_001(t *testing.T) {
	assert := assert.New(t)
	tag, branch := version.GitTag, version.GitBranch
	t.Cleanup(func() { version.GitTag, version.GitBranch = tag, branch })

	version.GitTag, version.GitBranch = "v1.2.3", "main"
	assert.Equal("v1.2.3", version.Version())
	version.GitTag = ""
	assert.Equal("main", version.Version())
	version.GitBranch = ""
	assert.NotEmpty(version.Version())
}

func Test_Version_002(t *testing.T) {
	assert := assert.New(t)
	info := version.Get("dms")
	assert.Equal("dms", info.Name)
	assert.Equal(runtime.Version(), info.Compiler)
	assert.Equal(runtime.GOOS+"/"+runtime.GOARCH, info.Platform)

	var decoded version.Info
	assert.NoError(json.Unmarshal(version.JSON("dms"), &decoded))
	assert.Equal("dms", decoded.Name)
	assert.Contains(version.UserAgent("dms"), "dms/")
}
