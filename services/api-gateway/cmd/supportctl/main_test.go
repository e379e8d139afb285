package main

import (
	"bytes"
	"strings"
	"testing"

	"licenseplatform/services/api-gateway/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return strings.TrimSpace(out.String()), err
}

func TestTokenCmd(t *testing.T) {
	out, err := execute(t, "token", "alice", "--secret", "s3cret", "--ttl", "1h")
	require.NoError(t, err)

	subject, err := security.NewTokenManager("s3cret").Validate(out)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestTokenCmd_RequiresSecret(t *testing.T) {
	t.Setenv("SUPPORT_JWT_SECRET", "")
	_, err := execute(t, "token", "alice")
	assert.Error(t, err)
}

func TestHashKeyCmd(t *testing.T) {
	out, err := execute(t, "hash-key", "device-key")
	require.NoError(t, err)
	assert.NoError(t, security.NewAPIKeyHasher().Compare(out, "device-key"))
}
